package api

import (
	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/simchain/internal/store"
)

type createUserRequest struct {
	User string `json:"user" validate:"required,max=64"`
}

type createWalletRequest struct {
	Nickname   string `json:"nickname" validate:"required,max=64"`
	PrivateKey string `json:"private_key,omitempty" validate:"omitempty,hexadecimal"`
}

type amountRequest struct {
	Chain  string          `json:"chain,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

type sendRequest struct {
	Chain    string          `json:"chain,omitempty"`
	ToUser   string          `json:"to_user" validate:"required"`
	ToWallet string          `json:"to_wallet" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type contractRequest struct {
	Chain string `json:"chain,omitempty"`
	Level string `json:"level" validate:"required,oneof=simple medium complex"`
}

type mintRequest struct {
	Chain       string `json:"chain,omitempty"`
	AssetID     string `json:"asset_id" validate:"required"`
	Name        string `json:"name,omitempty" validate:"max=120"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

type transferNFTRequest struct {
	Chain    string `json:"chain,omitempty"`
	ToUser   string `json:"to_user" validate:"required"`
	ToWallet string `json:"to_wallet" validate:"required"`
	BridgeTo string `json:"bridge_to,omitempty"`
}

type chainRequest struct {
	Chain string `json:"chain,omitempty"`
}

type listRequest struct {
	Chain   string          `json:"chain,omitempty"`
	TokenID string          `json:"token_id" validate:"required"`
	Price   decimal.Decimal `json:"price"`
}

type feeResponse struct {
	Level      string          `json:"level"`
	Label      string          `json:"label"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Fee        decimal.Decimal `json:"fee"`
}

type walletResponse struct {
	Address   string     `json:"address"`
	Nickname  string     `json:"nickname"`
	CreatedAt store.Time `json:"created_at,omitzero"`
}

type balanceResponse struct {
	Address  string          `json:"address"`
	Nickname string          `json:"nickname,omitempty"`
	USDC     decimal.Decimal `json:"usdc"`
}
