package ui

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/simchain/internal/ledger"
)

// DescribeTx renders a one-line summary of a ledger record.
func DescribeTx(r ledger.Record) string {
	switch rec := r.(type) {
	case *ledger.OnRamp:
		return fmt.Sprintf("On-ramp %s", USDC(rec.Amount))
	case *ledger.OffRamp:
		return fmt.Sprintf("Off-ramp %s", USDC(rec.Amount))
	case *ledger.TransferSent:
		return fmt.Sprintf("Sent %s to %s", USDC(rec.Amount), TruncateAddr(rec.Recipient))
	case *ledger.TransferReceived:
		return fmt.Sprintf("Received %s from %s", USDC(rec.Amount), TruncateAddr(rec.Sender))
	case *ledger.NFTMint:
		return fmt.Sprintf("Minted NFT %s (%s)", ShortID(rec.TokenID), rec.AssetID)
	case *ledger.NFTTransfer:
		if rec.BridgeTo != "" {
			return fmt.Sprintf("Bridged NFT %s to %s on %s", ShortID(rec.TokenID), TruncateAddr(rec.Recipient), rec.BridgeTo)
		}
		return fmt.Sprintf("Sent NFT %s to %s", ShortID(rec.TokenID), TruncateAddr(rec.Recipient))
	case *ledger.NFTReceived:
		return fmt.Sprintf("Received NFT %s from %s", ShortID(rec.TokenID), TruncateAddr(rec.Sender))
	case *ledger.NFTBurn:
		return fmt.Sprintf("Burned NFT %s", ShortID(rec.TokenID))
	case *ledger.ContractCall:
		return rec.Action
	}
	return string(r.Kind())
}

// Amount returns the signed USDC value a record moved, excluding gas.
// NFT and contract records move no USDC beyond their fee.
func Amount(r ledger.Record) (decimal.Decimal, bool) {
	switch rec := r.(type) {
	case *ledger.OnRamp:
		return rec.Amount, true
	case *ledger.OffRamp:
		return rec.Amount.Neg(), true
	case *ledger.TransferSent:
		return rec.Amount.Neg(), true
	case *ledger.TransferReceived:
		return rec.Amount, true
	}
	return decimal.Zero, false
}

// TxDetail lists every field of a record for the detail view.
func TxDetail(r ledger.Record) [][2]string {
	m := r.Base()
	pairs := [][2]string{
		{"Type", string(r.Kind())},
		{"Direction", string(r.Direction())},
		{"Hash", m.Hash},
		{"Wallet", m.Wallet},
		{"Chain", m.Chain},
		{"Time", m.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Gas", USDC(m.GasFee)},
	}
	switch rec := r.(type) {
	case *ledger.TransferSent:
		pairs = append(pairs, [2]string{"Recipient", rec.Recipient})
	case *ledger.TransferReceived:
		pairs = append(pairs, [2]string{"Sender", rec.Sender})
	case *ledger.NFTMint:
		pairs = append(pairs, [2]string{"Token", rec.TokenID}, [2]string{"Asset", rec.AssetID})
	case *ledger.NFTTransfer:
		pairs = append(pairs, [2]string{"Token", rec.TokenID}, [2]string{"Recipient", rec.Recipient})
		if rec.BridgeTo != "" {
			pairs = append(pairs, [2]string{"Bridged to", rec.BridgeTo})
		}
	case *ledger.NFTReceived:
		pairs = append(pairs, [2]string{"Token", rec.TokenID}, [2]string{"Sender", rec.Sender})
	case *ledger.NFTBurn:
		pairs = append(pairs, [2]string{"Token", rec.TokenID})
	}
	if amt, ok := Amount(r); ok {
		pairs = append(pairs, [2]string{"Amount", USDC(amt)})
	}
	return pairs
}

// HistoryTable lays out records newest first as a table.
func HistoryTable(rs ledger.Records) *Table {
	t := NewTable([]Column{
		{Title: "Time", Width: 16},
		{Title: "Chain", Width: 10},
		{Title: "Description", Width: 44},
		{Title: "Gas", Width: 10},
		{Title: "Hash", Width: 12},
	})
	for _, r := range rs {
		m := r.Base()
		gas := "-"
		if !m.GasFee.IsZero() {
			gas = m.GasFee.StringFixed(2)
		}
		t.AddRow(Row{
			m.Timestamp.Local().Format("2006-01-02 15:04"),
			m.Chain,
			DescribeTx(r),
			gas,
			TruncateAddr(m.Hash),
		})
	}
	return t
}
