package sim_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/simchain/internal/balance"
	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/ledger"
	"github.com/Mohsinsiddi/simchain/internal/nft"
	"github.com/Mohsinsiddi/simchain/internal/sim"
	"github.com/Mohsinsiddi/simchain/internal/user"
	"github.com/Mohsinsiddi/simchain/internal/wallet"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

const testCatalog = `[
  {"asset_id": "art-001", "title": "Sunset", "image_url": "https://img/1.png", "description": "warm"}
]`

type fixture struct {
	sim   *sim.Simulator
	alice sim.Actor
	bob   sim.Actor
}

// newFixture creates alice and bob with one wallet each on ethereum
// (base gas 2, multipliers 1 / 2.5 / 5).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "portfolio_catalog.json"), []byte(testCatalog), 0o600))

	s := sim.New(sim.Options{DataDir: dir, Chains: chain.Builtin()})
	f := &fixture{sim: s}
	for _, name := range []string{"alice", "bob"} {
		_, err := s.Users().Create(name)
		require.NoError(t, err)
		w, err := s.Wallets().Create(name, name+"-main")
		require.NoError(t, err)
		a := sim.Actor{User: name, Wallet: w.Address, Chain: "ethereum"}
		if name == "alice" {
			f.alice = a
		} else {
			f.bob = a
		}
	}
	return f
}

func (f *fixture) balance(t *testing.T, a sim.Actor) decimal.Decimal {
	t.Helper()
	b, err := f.sim.Balances().Get(a.User, a.Wallet)
	require.NoError(t, err)
	return b
}

func (f *fixture) history(t *testing.T, a sim.Actor) ledger.Records {
	t.Helper()
	rs, err := f.sim.Ledger().Load(a.User)
	require.NoError(t, err)
	return rs
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

// ---------------------------------------------------------------------------
// USDC flows
// ---------------------------------------------------------------------------

func TestOnRampAndSend(t *testing.T) {
	f := newFixture(t)

	_, err := f.sim.OnRamp(f.alice, d("500"))
	require.NoError(t, err)
	assertDec(t, "500", f.balance(t, f.alice))

	sent, err := f.sim.Send(f.alice, "bob", f.bob.Wallet, d("100"))
	require.NoError(t, err)
	assertDec(t, "2", sent.GasFee)

	assertDec(t, "398", f.balance(t, f.alice))
	assertDec(t, "100", f.balance(t, f.bob))

	ah := f.history(t, f.alice)
	require.Len(t, ah, 2)
	assert.Equal(t, ledger.KindOnRamp, ah[0].Kind())
	out := ah[1].(*ledger.TransferSent)
	assert.Equal(t, f.bob.Wallet, out.Recipient)

	bh := f.history(t, f.bob)
	require.Len(t, bh, 1)
	in := bh[0].(*ledger.TransferReceived)
	assert.Equal(t, f.alice.Wallet, in.Sender)
	assert.True(t, in.GasFee.IsZero())
	assert.True(t, out.Timestamp.Equal(in.Timestamp.Time), "both sides share a timestamp")
}

func TestSendInsufficientWritesNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.sim.OnRamp(f.alice, d("100"))
	require.NoError(t, err)

	_, err = f.sim.Send(f.alice, "bob", f.bob.Wallet, d("99"))
	assert.ErrorIs(t, err, balance.ErrInsufficientFunds)
	assertDec(t, "100", f.balance(t, f.alice))
	assertDec(t, "0", f.balance(t, f.bob))
	assert.Len(t, f.history(t, f.alice), 1)
	assert.Empty(t, f.history(t, f.bob))
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("100"))

	_, err := f.sim.Send(f.alice, "bob", f.bob.Wallet, d("0"))
	assert.ErrorIs(t, err, sim.ErrInvalidAmount)
	assert.ErrorIs(t, err, user.ErrInvalidInput)

	_, err = f.sim.Send(f.alice, "alice", f.alice.Wallet, d("1"))
	assert.ErrorIs(t, err, sim.ErrSameWallet)

	_, err = f.sim.Send(f.alice, "ghost", f.bob.Wallet, d("1"))
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.sim.Send(f.alice, "bob", "0xnothere", d("1"))
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)

	bad := f.alice
	bad.Chain = "dogechain"
	_, err = f.sim.Send(bad, "bob", f.bob.Wallet, d("1"))
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestOffRamp(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("50"))

	_, err := f.sim.OffRamp(f.alice, d("20"))
	require.NoError(t, err)
	assertDec(t, "30", f.balance(t, f.alice))

	_, err = f.sim.OffRamp(f.alice, d("31"))
	assert.ErrorIs(t, err, balance.ErrInsufficientFunds)
	_, err = f.sim.OffRamp(f.alice, d("-1"))
	assert.ErrorIs(t, err, sim.ErrInvalidAmount)
	assertDec(t, "30", f.balance(t, f.alice))
}

func TestOnRampRejectsNegative(t *testing.T) {
	f := newFixture(t)
	_, err := f.sim.OnRamp(f.alice, d("-5"))
	assert.ErrorIs(t, err, sim.ErrInvalidAmount)
}

func TestActionsRejectUsersOutsideUsersDir(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"..", "../.."} {
		a := sim.Actor{User: name, Wallet: f.alice.Wallet}
		_, err := f.sim.OnRamp(a, d("500"))
		assert.ErrorIs(t, err, user.ErrInvalidInput, "user %q", name)

		_, err = f.sim.Send(f.alice, name, f.bob.Wallet, d("1"))
		assert.ErrorIs(t, err, user.ErrInvalidInput, "recipient %q", name)
	}
	dataDir := filepath.Dir(f.sim.Users().Root())
	assert.NoFileExists(t, filepath.Join(dataDir, "balances.json"))
	assert.NoFileExists(t, filepath.Join(dataDir, "transactions.json"))
}

func TestDefaultChain(t *testing.T) {
	f := newFixture(t)
	a := f.alice
	a.Chain = ""
	rec, err := f.sim.OnRamp(a, d("1"))
	require.NoError(t, err)
	assert.Equal(t, "ethereum", rec.Chain)
}

// ---------------------------------------------------------------------------
// Contract calls
// ---------------------------------------------------------------------------

func TestChainByNumericID(t *testing.T) {
	f := newFixture(t)
	f.alice.Chain = "137"
	_, err := f.sim.OnRamp(f.alice, d("10"))
	require.NoError(t, err)

	rec, err := f.sim.ContractCall(f.alice, chain.Complex)
	require.NoError(t, err)
	assert.Equal(t, "polygon", rec.Chain)
	assert.True(t, d("0.2").Equal(rec.GasFee))
}

func TestContractCallCharges(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("10"))

	rec, err := f.sim.ContractCall(f.alice, chain.Medium)
	require.NoError(t, err)
	assertDec(t, "5", rec.GasFee)
	assert.Equal(t, "Medium Call (e.g. transfer ownership) - $5.00", rec.Action)
	assertDec(t, "5", f.balance(t, f.alice))

	_, err = f.sim.ContractCall(f.alice, chain.Complex)
	assert.ErrorIs(t, err, balance.ErrInsufficientFunds)
	assertDec(t, "5", f.balance(t, f.alice))
}

// ---------------------------------------------------------------------------
// NFTs
// ---------------------------------------------------------------------------

func TestMintTransferBurn(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("100"))
	_, _ = f.sim.OnRamp(f.bob, d("100"))

	minted, rec, err := f.sim.Mint(f.alice, sim.MintRequest{AssetID: "art-001", Name: "My Sunset"})
	require.NoError(t, err)
	assert.Equal(t, "My Sunset", minted.Name)
	assert.Equal(t, "warm", minted.Description)
	assertDec(t, "10", rec.GasFee)
	assert.True(t, rec.Amount.IsZero())
	assertDec(t, "90", f.balance(t, f.alice))

	owned, err := f.sim.NFTs().ListByOwner("alice", f.alice.Wallet)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, nft.EventMint, owned[0].History[0].Kind)

	moved, sent, err := f.sim.TransferNFT(f.alice, minted.TokenID, "bob", f.bob.Wallet, "polygon")
	require.NoError(t, err)
	assert.Equal(t, "bob", moved.OwnerUser)
	assert.Equal(t, "polygon", moved.Chain)
	assert.Equal(t, "polygon", sent.BridgeTo)
	assertDec(t, "5", sent.GasFee)
	assertDec(t, "85", f.balance(t, f.alice))

	bh := f.history(t, f.bob)
	last := bh[len(bh)-1].(*ledger.NFTReceived)
	assert.Equal(t, minted.TokenID, last.TokenID)

	// alice no longer owns it
	_, err = f.sim.Burn(f.alice, minted.TokenID)
	assert.ErrorIs(t, err, sim.ErrNotOwner)
	assertDec(t, "85", f.balance(t, f.alice))

	burned, err := f.sim.Burn(f.bob, minted.TokenID)
	require.NoError(t, err)
	assertDec(t, "5", burned.GasFee)
	assertDec(t, "95", f.balance(t, f.bob))

	_, err = f.sim.NFTs().Get(minted.TokenID)
	assert.ErrorIs(t, err, nft.ErrNotFound)
}

func TestMintInsufficientGas(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("9.99"))

	_, _, err := f.sim.Mint(f.alice, sim.MintRequest{AssetID: "art-001"})
	assert.ErrorIs(t, err, balance.ErrInsufficientFunds)

	all, err := f.sim.NFTs().All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMintUnknownAsset(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("100"))
	_, _, err := f.sim.Mint(f.alice, sim.MintRequest{AssetID: "nope"})
	assert.Error(t, err)
	assertDec(t, "100", f.balance(t, f.alice))
}

func TestTransferNFTNotOwnerChargesNothing(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("100"))
	_, _ = f.sim.OnRamp(f.bob, d("100"))
	minted, _, err := f.sim.Mint(f.alice, sim.MintRequest{AssetID: "art-001"})
	require.NoError(t, err)

	_, _, err = f.sim.TransferNFT(f.bob, minted.TokenID, "alice", f.alice.Wallet, "")
	assert.ErrorIs(t, err, sim.ErrNotOwner)
	assertDec(t, "100", f.balance(t, f.bob))

	_, _, err = f.sim.TransferNFT(f.alice, minted.TokenID, "bob", f.bob.Wallet, "atlantis")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

// ---------------------------------------------------------------------------
// Marketplace
// ---------------------------------------------------------------------------

func TestListingLifecycle(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("100"))
	minted, _, err := f.sim.Mint(f.alice, sim.MintRequest{AssetID: "art-001"})
	require.NoError(t, err)

	_, err = f.sim.ListForSale(f.bob, minted.TokenID, d("10"))
	assert.ErrorIs(t, err, sim.ErrNotOwner)

	l, err := f.sim.ListForSale(f.alice, minted.TokenID, d("10"))
	require.NoError(t, err)
	assert.Equal(t, "ethereum", l.Chain)

	_, err = f.sim.Delist(f.bob, minted.TokenID)
	assert.ErrorIs(t, err, sim.ErrNotOwner)

	removed, err := f.sim.Delist(f.alice, minted.TokenID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.sim.Delist(f.alice, minted.TokenID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestBurnDropsListing(t *testing.T) {
	f := newFixture(t)
	_, _ = f.sim.OnRamp(f.alice, d("100"))
	minted, _, _ := f.sim.Mint(f.alice, sim.MintRequest{AssetID: "art-001"})
	_, err := f.sim.ListForSale(f.alice, minted.TokenID, d("1"))
	require.NoError(t, err)

	_, err = f.sim.Burn(f.alice, minted.TokenID)
	require.NoError(t, err)

	_, ok, err := f.sim.Market().Get(minted.TokenID)
	require.NoError(t, err)
	assert.False(t, ok)
}
