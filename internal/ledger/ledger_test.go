package ledger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/simchain/internal/ledger"
	"github.com/Mohsinsiddi/simchain/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAppendStampsRecord(t *testing.T) {
	s := ledger.NewStore(t.TempDir())
	rec := &ledger.OnRamp{Meta: ledger.Meta{Wallet: "0xW1", Chain: "ethereum"}, Amount: d("500")}

	require.NoError(t, s.Append("alice", rec))

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
	assert.True(t, strings.HasPrefix(rec.Hash, "0x"))
	assert.Len(t, rec.Hash, 66)
}

func TestAppendKeepsOrder(t *testing.T) {
	s := ledger.NewStore(t.TempDir())
	require.NoError(t, s.Append("alice", &ledger.OnRamp{Meta: ledger.Meta{Wallet: "0xW1"}, Amount: d("1")}))
	require.NoError(t, s.Append("alice",
		&ledger.ContractCall{Meta: ledger.Meta{Wallet: "0xW1", GasFee: d("2")}, Action: "Simple Call"},
		&ledger.OffRamp{Meta: ledger.Meta{Wallet: "0xW1"}, Amount: d("1")},
	))

	rs, err := s.Load("alice")
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, ledger.KindOnRamp, rs[0].Kind())
	assert.Equal(t, ledger.KindContractCall, rs[1].Kind())
	assert.Equal(t, ledger.KindOffRamp, rs[2].Kind())

	call, ok := rs[1].(*ledger.ContractCall)
	require.True(t, ok)
	assert.Equal(t, "Simple Call", call.Action)
	assert.True(t, d("2").Equal(call.GasFee))
}

func TestLoadMissingIsEmpty(t *testing.T) {
	rs, err := ledger.NewStore(t.TempDir()).Load("nobody")
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestEncodeIsFlatWithTypeAndDirection(t *testing.T) {
	ts := store.Time{Time: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	rec := &ledger.TransferSent{
		Meta:      ledger.Meta{Wallet: "0xA", Chain: "polygon", Timestamp: ts, GasFee: d("0.05")},
		Amount:    d("25"),
		Recipient: "0xB",
	}
	data, err := ledger.Encode(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "transfer_sent",
		"direction": "out",
		"wallet": "0xA",
		"chain": "polygon",
		"timestamp": "2024-05-01T12:00:00Z",
		"gas_fee": 0.05,
		"amount": 25,
		"recipient": "0xB"
	}`, string(data))
}

func TestDecodeOriginalRecords(t *testing.T) {
	raw := `[
		{"type":"onramp","wallet":"0xA","amount":500,"chain":"ethereum","timestamp":"2024-05-01T10:11:12.123456","gas_fee":0,"direction":"in"},
		{"type":"nft_received","wallet":"0xA","token_id":"abc","sender":"0xB","chain":"base","timestamp":"2024-05-01T10:11:13","gas_fee":0,"direction":"in"}
	]`
	var rs ledger.Records
	require.NoError(t, json.Unmarshal([]byte(raw), &rs))
	require.Len(t, rs, 2)

	on := rs[0].(*ledger.OnRamp)
	assert.True(t, d("500").Equal(on.Amount))
	assert.Equal(t, 2024, on.Timestamp.Year())
	assert.Equal(t, 123456000, on.Timestamp.Nanosecond())

	recv := rs[1].(*ledger.NFTReceived)
	assert.Equal(t, "0xB", recv.Sender)
	assert.Equal(t, ledger.In, recv.Direction())
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := ledger.Decode([]byte(`{"type":"airdrop","wallet":"0xA"}`))
	assert.ErrorIs(t, err, ledger.ErrUnknownType)
	assert.ErrorContains(t, err, "airdrop")
}

func TestUnknownTypeSurvivesLoadAndAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alice", "transactions.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	raw := `[
		{"type":"onramp","wallet":"0xA","amount":500,"chain":"ethereum","timestamp":"2024-05-01T10:11:12","gas_fee":0,"direction":"in"},
		{"type":"airdrop","wallet":"0xA","chain":"base","timestamp":"2024-05-02T00:00:00","gas_fee":0,"direction":"in","bonus":"yes"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	s := ledger.NewStore(dir)
	rs, err := s.Load("alice")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	u, ok := rs[1].(*ledger.Unrecognized)
	require.True(t, ok)
	assert.Equal(t, ledger.Kind("airdrop"), u.Kind())
	assert.Equal(t, ledger.In, u.Direction())
	assert.Equal(t, "0xA", u.Wallet)
	assert.Len(t, ledger.ForWallet(rs, "0xa"), 2)

	require.NoError(t, s.Append("alice", &ledger.OffRamp{Meta: ledger.Meta{Wallet: "0xA"}, Amount: d("5")}))

	rs, err = s.Load("alice")
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, ledger.Kind("airdrop"), rs[1].Kind())
	assert.Equal(t, ledger.KindOffRamp, rs[2].Kind())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bonus"`)
}

func TestRoundTripEveryKind(t *testing.T) {
	recs := ledger.Records{
		&ledger.OnRamp{Amount: d("1")},
		&ledger.OffRamp{Amount: d("1")},
		&ledger.TransferSent{Amount: d("1"), Recipient: "0xB"},
		&ledger.TransferReceived{Amount: d("1"), Sender: "0xA"},
		&ledger.NFTMint{TokenID: "t", AssetID: "a"},
		&ledger.NFTTransfer{TokenID: "t", Recipient: "0xB", BridgeTo: "solana"},
		&ledger.NFTReceived{TokenID: "t", Sender: "0xA"},
		&ledger.NFTBurn{TokenID: "t"},
		&ledger.ContractCall{Action: "Complex Call"},
	}
	dir := t.TempDir()
	s := ledger.NewStore(dir)
	require.NoError(t, s.Append("alice", recs...))

	got, err := s.Load("alice")
	require.NoError(t, err)
	require.Len(t, got, len(recs))
	for i := range recs {
		assert.Equal(t, recs[i].Kind(), got[i].Kind())
		assert.Equal(t, recs[i].Direction(), got[i].Direction())
		assert.Equal(t, recs[i].Base().Hash, got[i].Base().Hash)
	}
	assert.Equal(t, "solana", got[5].(*ledger.NFTTransfer).BridgeTo)

	data, err := os.ReadFile(filepath.Join(dir, "alice", "transactions.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"direction": "in"`)
}

func TestHashIsStableAndDistinct(t *testing.T) {
	ts := store.Time{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := &ledger.NFTBurn{Meta: ledger.Meta{ID: "1", Wallet: "0xA", Timestamp: ts}}
	b := &ledger.NFTBurn{Meta: ledger.Meta{ID: "2", Wallet: "0xA", Timestamp: ts}}
	assert.Equal(t, ledger.Hash(a), ledger.Hash(a))
	assert.NotEqual(t, ledger.Hash(a), ledger.Hash(b))
}

func TestForWalletAndLatest(t *testing.T) {
	rs := ledger.Records{
		&ledger.OnRamp{Meta: ledger.Meta{ID: "1", Wallet: "0xA"}},
		&ledger.OnRamp{Meta: ledger.Meta{ID: "2", Wallet: "0xB"}},
		&ledger.OnRamp{Meta: ledger.Meta{ID: "3", Wallet: "0xa"}},
		&ledger.OnRamp{Meta: ledger.Meta{ID: "4", Wallet: "0xA"}},
	}
	mine := ledger.ForWallet(rs, "0xA")
	require.Len(t, mine, 3)

	latest := ledger.Latest(mine, 2)
	require.Len(t, latest, 2)
	assert.Equal(t, "4", latest[0].Base().ID)
	assert.Equal(t, "3", latest[1].Base().ID)

	assert.Len(t, ledger.Latest(mine, 0), 3)
	assert.Empty(t, ledger.Latest(nil, 5))
}
