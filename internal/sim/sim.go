// Package sim performs the dashboard actions: every operation charges gas,
// mutates the stores and writes the matching ledger records. The CLI and the
// HTTP API both drive it.
package sim

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/simchain/internal/balance"
	"github.com/Mohsinsiddi/simchain/internal/catalog"
	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/ledger"
	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/market"
	"github.com/Mohsinsiddi/simchain/internal/nft"
	"github.com/Mohsinsiddi/simchain/internal/store"
	"github.com/Mohsinsiddi/simchain/internal/user"
	"github.com/Mohsinsiddi/simchain/internal/wallet"
)

// Errors.
var (
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", user.ErrInvalidInput)
	ErrSameWallet    = fmt.Errorf("%w: recipient is the sending wallet", user.ErrInvalidInput)
	ErrNotOwner      = errors.New("wallet does not own this NFT")
)

// Actor is the user, wallet and chain an action runs as. An empty Chain
// means the registry's default chain.
type Actor struct {
	User   string
	Wallet string
	Chain  string
}

// Options configures a Simulator.
type Options struct {
	DataDir  string
	Chains   *chain.Registry
	Keystore wallet.KeystoreBackend
}

// Simulator ties the stores together.
type Simulator struct {
	chains   *chain.Registry
	users    *user.Directory
	wallets  *wallet.Manager
	balances *balance.Store
	ledger   *ledger.Store
	nfts     *nft.Registry
	catalog  *catalog.Catalog
	market   *market.Market
}

// New opens the stores under opts.DataDir.
func New(opts Options) *Simulator {
	chains := opts.Chains
	if chains == nil {
		chains = chain.Builtin()
	}
	usersDir := filepath.Join(opts.DataDir, "users")
	wopts := []wallet.Option{wallet.WithStore(wallet.NewJSONStore(usersDir))}
	if opts.Keystore != nil {
		wopts = append(wopts, wallet.WithKeystore(opts.Keystore))
	}
	return &Simulator{
		chains:   chains,
		users:    user.NewDirectory(usersDir),
		wallets:  wallet.NewManager(wopts...),
		balances: balance.NewStore(usersDir),
		ledger:   ledger.NewStore(usersDir),
		nfts:     nft.NewRegistry(filepath.Join(opts.DataDir, "nfts.json")),
		catalog:  catalog.New(filepath.Join(opts.DataDir, "portfolio_catalog.json")),
		market:   market.New(filepath.Join(opts.DataDir, "marketplace.json")),
	}
}

func (s *Simulator) Chains() *chain.Registry   { return s.chains }
func (s *Simulator) Users() *user.Directory    { return s.users }
func (s *Simulator) Wallets() *wallet.Manager  { return s.wallets }
func (s *Simulator) Balances() *balance.Store  { return s.balances }
func (s *Simulator) Ledger() *ledger.Store     { return s.ledger }
func (s *Simulator) NFTs() *nft.Registry       { return s.nfts }
func (s *Simulator) Catalog() *catalog.Catalog { return s.catalog }
func (s *Simulator) Market() *market.Market    { return s.market }

// resolve checks that the actor's user and wallet exist and looks up the
// chain. The returned wallet carries the stored spelling of the address.
func (s *Simulator) resolve(a Actor) (*wallet.Wallet, *chain.Chain, error) {
	if err := s.users.Require(a.User); err != nil {
		return nil, nil, err
	}
	w, err := s.wallets.Get(a.User, a.Wallet)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.chain(a.Chain)
	if err != nil {
		return nil, nil, err
	}
	return w, c, nil
}

func (s *Simulator) chain(name string) (*chain.Chain, error) {
	if name == "" {
		return s.chains.Default(), nil
	}
	return s.chains.Lookup(name)
}

func (s *Simulator) recipient(toUser, toWallet string) (*wallet.Wallet, error) {
	if err := s.users.Require(toUser); err != nil {
		return nil, err
	}
	return s.wallets.Get(toUser, toWallet)
}

func meta(w *wallet.Wallet, c *chain.Chain, gas decimal.Decimal) ledger.Meta {
	return ledger.Meta{Wallet: w.Address, Chain: c.Name, GasFee: gas}
}

func positive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount)
	}
	return nil
}

func nonNegative(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}
	return nil
}

func sameWallet(aUser, aAddr, bUser, bAddr string) bool {
	return aUser == bUser && strings.EqualFold(aAddr, bAddr)
}

// OnRamp deposits amount of play money into the actor's wallet.
func (s *Simulator) OnRamp(a Actor, amount decimal.Decimal) (*ledger.OnRamp, error) {
	if err := nonNegative(amount); err != nil {
		return nil, err
	}
	w, c, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	if err := s.balances.ApplyDelta(a.User, w.Address, amount); err != nil {
		return nil, err
	}
	rec := &ledger.OnRamp{Meta: meta(w, c, decimal.Zero), Amount: amount}
	if err := s.ledger.Append(a.User, rec); err != nil {
		return nil, err
	}
	logAction("onramp", a.User, w.Address, c.Name, decimal.Zero, zap.String("amount", amount.String()))
	return rec, nil
}

// OffRamp withdraws amount to "fiat".
func (s *Simulator) OffRamp(a Actor, amount decimal.Decimal) (*ledger.OffRamp, error) {
	if err := positive(amount); err != nil {
		return nil, err
	}
	w, c, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	if err := s.balances.Withdraw(a.User, w.Address, amount); err != nil {
		return nil, err
	}
	rec := &ledger.OffRamp{Meta: meta(w, c, decimal.Zero), Amount: amount}
	if err := s.ledger.Append(a.User, rec); err != nil {
		return nil, err
	}
	logAction("offramp", a.User, w.Address, c.Name, decimal.Zero, zap.String("amount", amount.String()))
	return rec, nil
}

// Send moves amount USDC to another wallet, burning the chain's base gas fee.
func (s *Simulator) Send(a Actor, toUser, toWallet string, amount decimal.Decimal) (*ledger.TransferSent, error) {
	if err := positive(amount); err != nil {
		return nil, err
	}
	w, c, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	to, err := s.recipient(toUser, toWallet)
	if err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	if sameWallet(a.User, w.Address, toUser, to.Address) {
		return nil, ErrSameWallet
	}

	gas := c.GasFee
	if err := s.balances.Transfer(a.User, w.Address, toUser, to.Address, amount, gas); err != nil {
		return nil, err
	}

	now := store.Now()
	sent := &ledger.TransferSent{Meta: meta(w, c, gas), Amount: amount, Recipient: to.Address}
	sent.Timestamp = now
	recv := &ledger.TransferReceived{Meta: meta(to, c, decimal.Zero), Amount: amount, Sender: w.Address}
	recv.Timestamp = now
	if err := s.ledger.Append(a.User, sent); err != nil {
		return nil, err
	}
	if err := s.ledger.Append(toUser, recv); err != nil {
		return nil, err
	}
	logAction("send", a.User, w.Address, c.Name, gas,
		zap.String("amount", amount.String()),
		zap.String("to_user", toUser),
		zap.String("to_wallet", to.Address))
	return sent, nil
}

// ContractCall charges the gas of a simulated contract interaction.
func (s *Simulator) ContractCall(a Actor, level chain.Complexity) (*ledger.ContractCall, error) {
	w, c, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	fee := chain.Fee(c, level)
	if err := s.balances.Charge(a.User, w.Address, fee); err != nil {
		return nil, fmt.Errorf("not enough USDC to cover gas (%s): %w", chain.FormatUSD(fee), err)
	}
	rec := &ledger.ContractCall{
		Meta:   meta(w, c, fee),
		Action: level.Label() + " - " + chain.FormatUSD(fee),
	}
	if err := s.ledger.Append(a.User, rec); err != nil {
		return nil, err
	}
	logAction("contract_call", a.User, w.Address, c.Name, fee, zap.String("level", string(level)))
	return rec, nil
}

// MintRequest selects a catalog asset and optional overrides.
type MintRequest struct {
	AssetID     string
	Name        string
	Description string
}

// Mint creates an NFT from a catalog asset. Minting costs a complex call.
func (s *Simulator) Mint(a Actor, req MintRequest) (*nft.NFT, *ledger.NFTMint, error) {
	w, c, err := s.resolve(a)
	if err != nil {
		return nil, nil, err
	}
	asset, err := s.catalog.Get(req.AssetID)
	if err != nil {
		return nil, nil, err
	}
	tmpl := *asset
	if name := strings.TrimSpace(req.Name); name != "" {
		tmpl.Title = name
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		tmpl.Description = desc
	}

	fee := chain.Fee(c, chain.Complex)
	if err := s.balances.Charge(a.User, w.Address, fee); err != nil {
		return nil, nil, fmt.Errorf("insufficient USDC to cover mint gas: %w", err)
	}
	minted, err := s.nfts.Mint(tmpl, c.Name, a.User, w.Address)
	if err != nil {
		s.refund(a.User, w.Address, fee)
		return nil, nil, err
	}

	rec := &ledger.NFTMint{
		Meta:    meta(w, c, fee),
		TokenID: minted.TokenID,
		AssetID: minted.AssetID,
		Amount:  decimal.Zero,
	}
	if err := s.ledger.Append(a.User, rec); err != nil {
		return nil, nil, err
	}
	logAction("nft_mint", a.User, w.Address, c.Name, fee, zap.String("token_id", minted.TokenID))
	return minted, rec, nil
}

// owned returns tokenID if the actor's wallet owns it.
func (s *Simulator) owned(a Actor, w *wallet.Wallet, tokenID string) (*nft.NFT, error) {
	n, err := s.nfts.Get(tokenID)
	if err != nil {
		return nil, err
	}
	if n.OwnerUser != a.User || !strings.EqualFold(n.OwnerAddress, w.Address) {
		return nil, fmt.Errorf("%w: %s", ErrNotOwner, tokenID)
	}
	return n, nil
}

// TransferNFT gives tokenID to another wallet. A non-empty bridgeTo moves the
// token to that chain too. Any marketplace listing of the token is dropped.
func (s *Simulator) TransferNFT(a Actor, tokenID, toUser, toWallet, bridgeTo string) (*nft.NFT, *ledger.NFTTransfer, error) {
	w, c, err := s.resolve(a)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.owned(a, w, tokenID); err != nil {
		return nil, nil, err
	}
	to, err := s.recipient(toUser, toWallet)
	if err != nil {
		return nil, nil, fmt.Errorf("recipient: %w", err)
	}
	if sameWallet(a.User, w.Address, toUser, to.Address) {
		return nil, nil, ErrSameWallet
	}
	if bridgeTo != "" {
		target, err := s.chains.Lookup(bridgeTo)
		if err != nil {
			return nil, nil, err
		}
		bridgeTo = target.Name
	}

	fee := chain.Fee(c, chain.Medium)
	if err := s.balances.Charge(a.User, w.Address, fee); err != nil {
		return nil, nil, fmt.Errorf("not enough USDC to cover gas: %w", err)
	}
	moved, err := s.nfts.Transfer(tokenID, toUser, to.Address, bridgeTo)
	if err != nil {
		s.refund(a.User, w.Address, fee)
		return nil, nil, err
	}
	if _, err := s.market.Delist(tokenID); err != nil {
		logger.Log.Warn("could not drop listing of transferred NFT", zap.String("token_id", tokenID), zap.Error(err))
	}

	now := store.Now()
	sent := &ledger.NFTTransfer{Meta: meta(w, c, fee), TokenID: tokenID, Recipient: to.Address, BridgeTo: bridgeTo}
	sent.Timestamp = now
	recv := &ledger.NFTReceived{Meta: meta(to, c, decimal.Zero), TokenID: tokenID, Sender: w.Address}
	recv.Timestamp = now
	if err := s.ledger.Append(a.User, sent); err != nil {
		return nil, nil, err
	}
	if err := s.ledger.Append(toUser, recv); err != nil {
		return nil, nil, err
	}
	logAction("nft_transfer", a.User, w.Address, c.Name, fee,
		zap.String("token_id", tokenID),
		zap.String("to_user", toUser),
		zap.String("bridge_to", bridgeTo))
	return moved, sent, nil
}

// Burn destroys tokenID and drops any listing for it.
func (s *Simulator) Burn(a Actor, tokenID string) (*ledger.NFTBurn, error) {
	w, c, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(a, w, tokenID); err != nil {
		return nil, err
	}
	fee := chain.Fee(c, chain.Medium)
	if err := s.balances.Charge(a.User, w.Address, fee); err != nil {
		return nil, fmt.Errorf("not enough USDC to cover gas: %w", err)
	}
	if _, err := s.nfts.Burn(tokenID); err != nil {
		s.refund(a.User, w.Address, fee)
		return nil, err
	}
	if _, err := s.market.Delist(tokenID); err != nil {
		logger.Log.Warn("could not drop listing of burned NFT", zap.String("token_id", tokenID), zap.Error(err))
	}
	rec := &ledger.NFTBurn{Meta: meta(w, c, fee), TokenID: tokenID}
	if err := s.ledger.Append(a.User, rec); err != nil {
		return nil, err
	}
	logAction("nft_burn", a.User, w.Address, c.Name, fee, zap.String("token_id", tokenID))
	return rec, nil
}

// ListForSale advertises an owned token at price.
func (s *Simulator) ListForSale(a Actor, tokenID string, price decimal.Decimal) (*market.Listing, error) {
	if err := nonNegative(price); err != nil {
		return nil, err
	}
	w, c, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	n, err := s.owned(a, w, tokenID)
	if err != nil {
		return nil, err
	}
	l, err := s.market.List(n.TokenID, a.User, w.Address, price, c.Name)
	if err != nil {
		return nil, err
	}
	logAction("market_list", a.User, w.Address, c.Name, decimal.Zero,
		zap.String("token_id", tokenID), zap.String("price", price.String()))
	return l, nil
}

// Delist withdraws the actor's listing of tokenID. It reports whether a
// listing was removed.
func (s *Simulator) Delist(a Actor, tokenID string) (bool, error) {
	if err := s.users.Require(a.User); err != nil {
		return false, err
	}
	l, ok, err := s.market.Get(tokenID)
	if err != nil || !ok {
		return false, err
	}
	if l.SellerUser != a.User {
		return false, fmt.Errorf("%w: listed by %s", ErrNotOwner, l.SellerUser)
	}
	return s.market.Delist(tokenID)
}

func (s *Simulator) refund(user, address string, fee decimal.Decimal) {
	if err := s.balances.ApplyDelta(user, address, fee); err != nil {
		logger.Log.Error("gas refund failed",
			zap.String("user", user), zap.String("wallet", address),
			zap.String("gas_fee", fee.String()), zap.Error(err))
	}
}

func logAction(action, user, address, chainName string, gas decimal.Decimal, fields ...zap.Field) {
	logger.Log.Info("sim: "+action, append([]zap.Field{
		zap.String("user", user),
		zap.String("wallet", address),
		zap.String("chain", chainName),
		zap.String("gas_fee", gas.String()),
	}, fields...)...)
}
