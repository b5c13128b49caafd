// Package ledger is the append-only per-user transaction history.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/store"
)

// ErrUnknownType is returned by Decode for a "type" outside the known kinds.
var ErrUnknownType = errors.New("unknown transaction type")

// Kind is the record discriminator stored under "type".
type Kind string

const (
	KindOnRamp           Kind = "onramp"
	KindOffRamp          Kind = "offramp"
	KindTransferSent     Kind = "transfer_sent"
	KindTransferReceived Kind = "transfer_received"
	KindNFTMint          Kind = "nft_mint"
	KindNFTTransfer      Kind = "nft_transfer"
	KindNFTReceived      Kind = "nft_received"
	KindNFTBurn          Kind = "nft_burn"
	KindContractCall     Kind = "contract_call"
)

// Direction says whether value entered or left the wallet.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Record is one ledger entry. The concrete types below are the only
// implementations.
type Record interface {
	Kind() Kind
	Direction() Direction
	Base() *Meta
}

// Meta holds the fields every record carries.
type Meta struct {
	ID        string          `json:"id,omitempty"`
	Hash      string          `json:"tx_hash,omitempty"`
	Wallet    string          `json:"wallet"`
	Chain     string          `json:"chain"`
	Timestamp store.Time      `json:"timestamp"`
	GasFee    decimal.Decimal `json:"gas_fee"`
}

// Base returns the shared fields.
func (m *Meta) Base() *Meta { return m }

type OnRamp struct {
	Meta
	Amount decimal.Decimal `json:"amount"`
}

type OffRamp struct {
	Meta
	Amount decimal.Decimal `json:"amount"`
}

type TransferSent struct {
	Meta
	Amount    decimal.Decimal `json:"amount"`
	Recipient string          `json:"recipient"`
}

type TransferReceived struct {
	Meta
	Amount decimal.Decimal `json:"amount"`
	Sender string          `json:"sender"`
}

type NFTMint struct {
	Meta
	TokenID string          `json:"token_id"`
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

type NFTTransfer struct {
	Meta
	TokenID   string `json:"token_id"`
	Recipient string `json:"recipient"`
	BridgeTo  string `json:"bridge_to,omitempty"`
}

type NFTReceived struct {
	Meta
	TokenID string `json:"token_id"`
	Sender  string `json:"sender"`
}

type NFTBurn struct {
	Meta
	TokenID string `json:"token_id"`
}

type ContractCall struct {
	Meta
	Action string `json:"action"`
}

// Unrecognized is a stored record of a type this build doesn't know. Its
// original JSON is written back unchanged.
type Unrecognized struct {
	Meta
	Type Kind
	Dir  Direction
	Raw  json.RawMessage
}

func (u *Unrecognized) Kind() Kind           { return u.Type }
func (u *Unrecognized) Direction() Direction { return u.Dir }

func (*OnRamp) Kind() Kind           { return KindOnRamp }
func (*OffRamp) Kind() Kind          { return KindOffRamp }
func (*TransferSent) Kind() Kind     { return KindTransferSent }
func (*TransferReceived) Kind() Kind { return KindTransferReceived }
func (*NFTMint) Kind() Kind          { return KindNFTMint }
func (*NFTTransfer) Kind() Kind      { return KindNFTTransfer }
func (*NFTReceived) Kind() Kind      { return KindNFTReceived }
func (*NFTBurn) Kind() Kind          { return KindNFTBurn }
func (*ContractCall) Kind() Kind     { return KindContractCall }

func (*OnRamp) Direction() Direction           { return In }
func (*OffRamp) Direction() Direction          { return Out }
func (*TransferSent) Direction() Direction     { return Out }
func (*TransferReceived) Direction() Direction { return In }
func (*NFTMint) Direction() Direction          { return Out }
func (*NFTTransfer) Direction() Direction      { return Out }
func (*NFTReceived) Direction() Direction      { return In }
func (*NFTBurn) Direction() Direction          { return Out }
func (*ContractCall) Direction() Direction     { return Out }

func newRecord(k Kind) (Record, error) {
	switch k {
	case KindOnRamp:
		return &OnRamp{}, nil
	case KindOffRamp:
		return &OffRamp{}, nil
	case KindTransferSent:
		return &TransferSent{}, nil
	case KindTransferReceived:
		return &TransferReceived{}, nil
	case KindNFTMint:
		return &NFTMint{}, nil
	case KindNFTTransfer:
		return &NFTTransfer{}, nil
	case KindNFTReceived:
		return &NFTReceived{}, nil
	case KindNFTBurn:
		return &NFTBurn{}, nil
	case KindContractCall:
		return &ContractCall{}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, k)
}

// Encode renders r as a flat JSON object with "type" and "direction".
func Encode(r Record) ([]byte, error) {
	if u, ok := r.(*Unrecognized); ok {
		return u.Raw, nil
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"], _ = json.Marshal(r.Kind())
	fields["direction"], _ = json.Marshal(r.Direction())
	return json.Marshal(fields)
}

// Decode parses one flat JSON record, dispatching on its "type".
func Decode(data []byte) (Record, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	r, err := newRecord(head.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
	}
	return r, nil
}

// Records is the on-disk shape of transactions.json.
type Records []Record

func (rs Records) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(rs))
	for i, r := range rs {
		b, err := Encode(r)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return json.Marshal(out)
}

func (rs *Records) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Records, 0, len(raw))
	for i, b := range raw {
		r, err := Decode(b)
		if errors.Is(err, ErrUnknownType) {
			var u *Unrecognized
			if u, err = unrecognized(b); err == nil {
				logger.Log.Warn("ledger: keeping record of unknown type",
					zap.Int("index", i), zap.String("type", string(u.Type)))
				r = u
			}
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, r)
	}
	*rs = out
	return nil
}

func unrecognized(data []byte) (*Unrecognized, error) {
	var head struct {
		Type      Kind      `json:"type"`
		Direction Direction `json:"direction"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	u := &Unrecognized{Type: head.Type, Dir: head.Direction, Raw: append(json.RawMessage(nil), data...)}
	// Best effort: a foreign record may not share every common field.
	_ = json.Unmarshal(data, &u.Meta)
	return u, nil
}
