package wallet_test

import (
	"strings"
	"testing"

	"github.com/Mohsinsiddi/simchain/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hardhatKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestCreateWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, err := mgr.Create("alice", "main")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(w.Address, "0x"))
	assert.Len(t, w.Address, 42)
	assert.True(t, strings.HasPrefix(w.PrivateKey, "0x"))
	assert.Len(t, w.PrivateKey, 66)
	assert.Equal(t, "main", w.Nickname)
	assert.False(t, w.CreatedAt.IsZero())
}

func TestCreateUniqueKeys(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	w1, err := mgr.Create("alice", "")
	require.NoError(t, err)
	w2, err := mgr.Create("alice", "")
	require.NoError(t, err)
	assert.NotEqual(t, w1.Address, w2.Address)
	assert.NotEqual(t, w1.PrivateKey, w2.PrivateKey)
}

func TestListKeepsCreationOrder(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	var want []string
	for i := 0; i < 3; i++ {
		w, err := mgr.Create("alice", "")
		require.NoError(t, err)
		want = append(want, w.Address)
	}

	ws, err := mgr.List("alice")
	require.NoError(t, err)
	var got []string
	for _, w := range ws {
		got = append(got, w.Address)
	}
	assert.Equal(t, want, got)
}

func TestListUnknownUserEmpty(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	ws, err := mgr.List("nobody")
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestImportKnownKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, err := mgr.Import("alice", "hardhat", hardhatKey)
	require.NoError(t, err)
	assert.Equal(t, hardhatAddr, w.Address) // known address for test key
}

func TestImportDuplicateErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Import("alice", "", hardhatKey)
	require.NoError(t, err)

	_, err = mgr.Import("alice", "", strings.TrimPrefix(hardhatKey, "0x"))
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestImportInvalidKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Import("alice", "", "not-a-valid-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
}

func TestGetCaseInsensitive(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Import("alice", "", hardhatKey)
	require.NoError(t, err)

	w, err := mgr.Get("alice", strings.ToLower(hardhatAddr))
	require.NoError(t, err)
	assert.Equal(t, hardhatAddr, w.Address)
}

func TestGetNotFound(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Get("alice", "0xdead")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestRename(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	w, err := mgr.Create("alice", "old")
	require.NoError(t, err)

	require.NoError(t, mgr.Rename("alice", w.Address, "  savings "))
	got, err := mgr.Get("alice", w.Address)
	require.NoError(t, err)
	assert.Equal(t, "savings", got.Nickname)
}

func TestRenameUnknownIsNoop(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Create("alice", "keep")
	require.NoError(t, err)

	require.NoError(t, mgr.Rename("alice", "0xnothere", "x"))
	ws, _ := mgr.List("alice")
	require.Len(t, ws, 1)
	assert.Equal(t, "keep", ws[0].Nickname)
}

func TestDelete(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	w1, _ := mgr.Create("alice", "a")
	w2, _ := mgr.Create("alice", "b")

	require.NoError(t, mgr.Delete("alice", w1.Address))
	ws, err := mgr.List("alice")
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, w2.Address, ws[0].Address)

	require.NoError(t, mgr.Delete("alice", "0xnothere"))
	ws, _ = mgr.List("alice")
	assert.Len(t, ws, 1)
}

func TestResolve(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	imported, err := mgr.Import("alice", "hardhat", hardhatKey)
	require.NoError(t, err)
	_, err = mgr.Create("alice", "spare")
	require.NoError(t, err)

	for _, ref := range []string{hardhatAddr, "HARDHAT", "0xf39fd6"} {
		w, err := mgr.Resolve("alice", ref)
		require.NoError(t, err, ref)
		assert.Equal(t, imported.Address, w.Address, ref)
	}

	_, err = mgr.Resolve("alice", "unknown")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestResolveAmbiguousNickname(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, _ = mgr.Create("alice", "twin")
	_, _ = mgr.Create("alice", "twin")

	_, err := mgr.Resolve("alice", "twin")
	assert.ErrorIs(t, err, wallet.ErrAmbiguous)
}

func TestListAllAcrossUsers(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	b, _ := mgr.Create("bob", "b1")
	a1, _ := mgr.Create("alice", "a1")
	a2, _ := mgr.Create("alice", "a2")

	all, err := mgr.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, wallet.Entry{User: "alice", Address: a1.Address, Nickname: "a1"}, all[0])
	assert.Equal(t, wallet.Entry{User: "alice", Address: a2.Address, Nickname: "a2"}, all[1])
	assert.Equal(t, wallet.Entry{User: "bob", Address: b.Address, Nickname: "b1"}, all[2])
}

func TestPrivateKeyInFile(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Import("alice", "", hardhatKey)
	require.NoError(t, err)

	key, err := mgr.PrivateKey("alice", hardhatAddr)
	require.NoError(t, err)
	assert.Equal(t, hardhatKey, key)
}

func TestPrivateKeyViaKeystore(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))

	w, err := mgr.Import("alice", "", hardhatKey)
	require.NoError(t, err)
	assert.Empty(t, w.PrivateKey, "key must not be kept in the wallet record")
	assert.NotEmpty(t, w.KeyRef)
	assert.Equal(t, 1, ks.Len())

	key, err := mgr.PrivateKey("alice", hardhatAddr)
	require.NoError(t, err)
	assert.Equal(t, hardhatKey, key)

	require.NoError(t, mgr.Delete("alice", hardhatAddr))
	assert.Equal(t, 0, ks.Len())
}

func TestPrivateKeyNotFound(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.PrivateKey("alice", "0xghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, hardhatAddr, wallet.Label("", hardhatAddr))
	assert.Equal(t, "main (0xf39F…2266)", wallet.Label("main", hardhatAddr))
	assert.Equal(t, "0xabc", wallet.Short("0xabc"))
}
