package balance_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/simchain/internal/balance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertBalance(t *testing.T, s *balance.Store, user, addr, want string) {
	t.Helper()
	got, err := s.Get(user, addr)
	require.NoError(t, err)
	assert.True(t, d(want).Equal(got), "%s/%s: want %s, got %s", user, addr, want, got)
}

// ---------------------------------------------------------------------------
// Get / ApplyDelta
// ---------------------------------------------------------------------------

func TestGetUnknownIsZero(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	assertBalance(t, s, "alice", "0xW1", "0")
}

func TestApplyDeltaAccumulates(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("500")))
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("-2.5")))
	assertBalance(t, s, "alice", "0xW1", "497.5")
}

func TestApplyDeltaCanGoNegative(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("-3")))
	assertBalance(t, s, "alice", "0xW1", "-3")
}

func TestFileFormatMatchesOriginal(t *testing.T) {
	dir := t.TempDir()
	s := balance.NewStore(dir)
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("500")))

	data, err := os.ReadFile(filepath.Join(dir, "alice", "balances.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"0xW1": {"USDC": 500}}`, string(data))
}

func TestReadsOriginalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bob"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bob", "balances.json"),
		[]byte(`{"0xAA": {"USDC": 12.75}}`), 0o600))

	s := balance.NewStore(dir)
	assertBalance(t, s, "bob", "0xAA", "12.75")

	all, err := s.All("bob")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// ---------------------------------------------------------------------------
// Charge / Withdraw
// ---------------------------------------------------------------------------

func TestChargeInsufficient(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("1")))

	err := s.Charge("alice", "0xW1", d("2"))
	assert.ErrorIs(t, err, balance.ErrInsufficientFunds)
	assertBalance(t, s, "alice", "0xW1", "1")
}

func TestChargeExactBalance(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("2")))
	require.NoError(t, s.Charge("alice", "0xW1", d("2")))
	assertBalance(t, s, "alice", "0xW1", "0")
}

func TestWithdraw(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("100")))
	require.NoError(t, s.Withdraw("alice", "0xW1", d("40")))
	assertBalance(t, s, "alice", "0xW1", "60")

	err := s.Withdraw("alice", "0xW1", d("61"))
	assert.ErrorIs(t, err, balance.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "off-ramp")
	assertBalance(t, s, "alice", "0xW1", "60")
}

// ---------------------------------------------------------------------------
// Transfer
// ---------------------------------------------------------------------------

func TestTransferInsufficientLeavesBothUnchanged(t *testing.T) {
	tests := []struct {
		name, start, amount, gas string
	}{
		{"amount alone too large", "50", "60", "0"},
		{"gas tips it over", "100", "99", "2"},
		{"empty wallet", "0", "0", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := balance.NewStore(t.TempDir())
			require.NoError(t, s.ApplyDelta("alice", "0xW1", d(tt.start)))
			require.NoError(t, s.ApplyDelta("bob", "0xW2", d("7")))

			err := s.Transfer("alice", "0xW1", "bob", "0xW2", d(tt.amount), d(tt.gas))
			assert.ErrorIs(t, err, balance.ErrInsufficientFunds)
			assertBalance(t, s, "alice", "0xW1", tt.start)
			assertBalance(t, s, "bob", "0xW2", "7")
		})
	}
}

func TestTransferBurnsGas(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("500")))

	require.NoError(t, s.Transfer("alice", "0xW1", "bob", "0xW2", d("100"), d("2")))

	assertBalance(t, s, "alice", "0xW1", "398")
	assertBalance(t, s, "bob", "0xW2", "100")

	a, _ := s.Get("alice", "0xW1")
	b, _ := s.Get("bob", "0xW2")
	assert.True(t, d("498").Equal(a.Add(b)), "total drops by exactly the gas")
}

func TestTransferBetweenWalletsOfSameUser(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("10")))

	require.NoError(t, s.Transfer("alice", "0xW1", "alice", "0xW3", d("4"), d("1")))
	assertBalance(t, s, "alice", "0xW1", "5")
	assertBalance(t, s, "alice", "0xW3", "4")
}

func TestTransferToSelfOnlyBurnsGas(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xW1", d("10")))

	require.NoError(t, s.Transfer("alice", "0xW1", "alice", "0xW1", d("4"), d("1")))
	assertBalance(t, s, "alice", "0xW1", "9")
}

func TestConcurrentTransfersNoLostUpdates(t *testing.T) {
	s := balance.NewStore(t.TempDir())
	require.NoError(t, s.ApplyDelta("alice", "0xA", d("1000")))
	require.NoError(t, s.ApplyDelta("bob", "0xB", d("1000")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Transfer("alice", "0xA", "bob", "0xB", d("10"), d("1")))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Transfer("bob", "0xB", "alice", "0xA", d("5"), d("1")))
		}()
	}
	wg.Wait()

	// alice: 1000 - 10*11 + 10*5 = 940; bob: 1000 - 10*6 + 10*10 = 1040
	assertBalance(t, s, "alice", "0xA", "940")
	assertBalance(t, s, "bob", "0xB", "1040")
}
