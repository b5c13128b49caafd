// Package market keeps NFT sale listings in marketplace.json. There is no
// purchase flow; a listing only advertises a price.
package market

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/simchain/internal/store"
)

// ErrAlreadyListed is returned when a token already has a listing.
var ErrAlreadyListed = errors.New("NFT is already listed for sale")

// Listing is an active offer to sell one token.
type Listing struct {
	TokenID       string          `json:"token_id"`
	SellerUser    string          `json:"seller_user"`
	SellerAddress string          `json:"seller_address"`
	Price         decimal.Decimal `json:"price"`
	Chain         string          `json:"chain"`
	ListedAt      store.Time      `json:"listed_at"`
}

// Market reads and mutates the listing file.
type Market struct {
	path string
}

// New creates a market backed by path.
func New(path string) *Market {
	return &Market{path: path}
}

// List adds a listing for tokenID.
func (m *Market) List(tokenID, sellerUser, sellerAddress string, price decimal.Decimal, chain string) (*Listing, error) {
	l := Listing{
		TokenID:       tokenID,
		SellerUser:    sellerUser,
		SellerAddress: sellerAddress,
		Price:         price,
		Chain:         chain,
		ListedAt:      store.Now(),
	}
	err := store.Update(m.path, func(all *[]Listing) error {
		for _, existing := range *all {
			if existing.TokenID == tokenID {
				return fmt.Errorf("%w: %s", ErrAlreadyListed, tokenID)
			}
		}
		*all = append(*all, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Delist removes any listing for tokenID and reports whether one existed.
func (m *Market) Delist(tokenID string) (bool, error) {
	removed := false
	err := store.Update(m.path, func(all *[]Listing) error {
		kept := make([]Listing, 0, len(*all))
		for _, l := range *all {
			if l.TokenID == tokenID {
				removed = true
				continue
			}
			kept = append(kept, l)
		}
		*all = kept
		return nil
	})
	return removed, err
}

// Get looks up the listing for tokenID.
func (m *Market) Get(tokenID string) (*Listing, bool, error) {
	all, err := m.All()
	if err != nil {
		return nil, false, err
	}
	for i := range all {
		if all[i].TokenID == tokenID {
			return &all[i], true, nil
		}
	}
	return nil, false, nil
}

// ByUser returns sellerUser's listings.
func (m *Market) ByUser(sellerUser string) ([]Listing, error) {
	all, err := m.All()
	if err != nil {
		return nil, err
	}
	var out []Listing
	for _, l := range all {
		if l.SellerUser == sellerUser {
			out = append(out, l)
		}
	}
	return out, nil
}

// All returns every listing in the order they were made.
func (m *Market) All() ([]Listing, error) {
	return store.Load[[]Listing](m.path)
}
