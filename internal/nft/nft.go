// Package nft is the global registry of minted tokens, kept in nfts.json.
package nft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/simchain/internal/catalog"
	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/store"
)

// ErrNotFound is returned for an unknown token id.
var ErrNotFound = errors.New("nft not found")

// EventKind names a history entry.
type EventKind string

const (
	EventMint     EventKind = "mint"
	EventTransfer EventKind = "transfer"
)

// Event is one entry in a token's history. Mint events fill User and
// Address; transfer events fill the From and To pairs.
type Event struct {
	Kind        EventKind  `json:"event"`
	User        string     `json:"user,omitempty"`
	Address     string     `json:"address,omitempty"`
	FromUser    string     `json:"from_user,omitempty"`
	FromAddress string     `json:"from_address,omitempty"`
	ToUser      string     `json:"to_user,omitempty"`
	ToAddress   string     `json:"to_address,omitempty"`
	Chain       string     `json:"chain"`
	Timestamp   store.Time `json:"ts"`
}

// NFT is a minted token.
type NFT struct {
	TokenID      string     `json:"token_id"`
	AssetID      string     `json:"asset_id"`
	Name         string     `json:"name"`
	ImageURL     string     `json:"image_url"`
	Description  string     `json:"description"`
	Chain        string     `json:"chain"`
	OwnerUser    string     `json:"owner_user"`
	OwnerAddress string     `json:"owner_address"`
	MintedAt     store.Time `json:"minted_at"`
	History      []Event    `json:"history"`
}

// Registry mutates the token file under its lock.
type Registry struct {
	path string
}

// NewRegistry creates a registry backed by path.
func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// All returns every token in mint order.
func (r *Registry) All() ([]NFT, error) {
	return store.Load[[]NFT](r.path)
}

// Mint creates a token from asset owned by ownerUser/ownerAddress.
func (r *Registry) Mint(asset catalog.Asset, chain, ownerUser, ownerAddress string) (*NFT, error) {
	now := store.Now()
	n := NFT{
		TokenID:      uuid.NewString(),
		AssetID:      asset.AssetID,
		Name:         asset.Title,
		ImageURL:     asset.ImageURL,
		Description:  asset.Description,
		Chain:        chain,
		OwnerUser:    ownerUser,
		OwnerAddress: ownerAddress,
		MintedAt:     now,
		History: []Event{{
			Kind:      EventMint,
			User:      ownerUser,
			Address:   ownerAddress,
			Chain:     chain,
			Timestamp: now,
		}},
	}
	err := store.Update(r.path, func(all *[]NFT) error {
		*all = append(*all, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("nft minted",
		zap.String("token_id", n.TokenID),
		zap.String("asset_id", n.AssetID),
		zap.String("owner", ownerUser))
	return &n, nil
}

// Transfer reassigns tokenID. A non-empty chain moves the token to that
// chain as well.
func (r *Registry) Transfer(tokenID, newUser, newAddress, chain string) (*NFT, error) {
	var updated NFT
	err := store.Update(r.path, func(all *[]NFT) error {
		i := indexOf(*all, tokenID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, tokenID)
		}
		n := &(*all)[i]
		ev := Event{
			Kind:        EventTransfer,
			FromUser:    n.OwnerUser,
			FromAddress: n.OwnerAddress,
			ToUser:      newUser,
			ToAddress:   newAddress,
			Chain:       n.Chain,
			Timestamp:   store.Now(),
		}
		if chain != "" {
			n.Chain = chain
			ev.Chain = chain
		}
		n.OwnerUser = newUser
		n.OwnerAddress = newAddress
		n.History = append(n.History, ev)
		updated = *n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Burn removes tokenID and its history. It reports whether a token was
// removed; burning an unknown id is not an error.
func (r *Registry) Burn(tokenID string) (bool, error) {
	removed := false
	err := store.Update(r.path, func(all *[]NFT) error {
		i := indexOf(*all, tokenID)
		if i < 0 {
			return nil
		}
		*all = append((*all)[:i], (*all)[i+1:]...)
		removed = true
		return nil
	})
	return removed, err
}

// Get returns the token with tokenID.
func (r *Registry) Get(tokenID string) (*NFT, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, tokenID); i >= 0 {
		return &all[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, tokenID)
}

// ListByOwner filters on whichever of ownerUser and ownerAddress is non-empty.
// Addresses match case-insensitively.
func (r *Registry) ListByOwner(ownerUser, ownerAddress string) ([]NFT, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	var out []NFT
	for _, n := range all {
		if ownerUser != "" && n.OwnerUser != ownerUser {
			continue
		}
		if ownerAddress != "" && !strings.EqualFold(n.OwnerAddress, ownerAddress) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func indexOf(all []NFT, tokenID string) int {
	for i := range all {
		if all[i].TokenID == tokenID {
			return i
		}
	}
	return -1
}
