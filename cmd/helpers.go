package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/sim"
	"github.com/Mohsinsiddi/simchain/internal/ui"
	"github.com/Mohsinsiddi/simchain/internal/wallet"
)

var errNoWallet = errors.New("no active wallet, run: simchain wallet use")

func errorLine(err error) string {
	return ui.Err(err.Error())
}

// activeUser is --user if given, otherwise the logged-in user.
func activeUser() (string, error) {
	u := userFlag
	if u == "" {
		var err error
		if u, err = sess.RequireUser(); err != nil {
			return "", err
		}
	}
	if err := simr.Users().Require(u); err != nil {
		return "", err
	}
	return u, nil
}

// activeChain is --chain, then the session chain, then the configured
// default. Empty means the first chain in the registry.
func activeChain() string {
	switch {
	case chainFlag != "":
		return chainFlag
	case sess.Chain != "":
		return sess.Chain
	}
	return cfg.DefaultChain
}

func currentChain() (*chain.Chain, error) {
	name := activeChain()
	if name == "" {
		return simr.Chains().Default(), nil
	}
	return simr.Chains().Lookup(name)
}

// activeWallet picks the wallet of user that commands act on: --wallet,
// then the session wallet (only for the logged-in user), then the user's
// only wallet.
func activeWallet(user string) (*wallet.Wallet, error) {
	ref := walletFlag
	if ref == "" && user == sess.User {
		ref = sess.Wallet
	}
	if ref != "" {
		w, err := simr.Wallets().Resolve(user, ref)
		if err != nil {
			return nil, fmt.Errorf("wallet %q: %w", ref, err)
		}
		return w, nil
	}

	ws, err := simr.Wallets().List(user)
	if err != nil {
		return nil, err
	}
	switch len(ws) {
	case 0:
		return nil, fmt.Errorf("%s has no wallets, create one with: simchain wallet create <nickname>", user)
	case 1:
		return ws[0], nil
	}
	return nil, errNoWallet
}

// activeActor resolves the user, wallet and chain a command acts as.
func activeActor() (sim.Actor, *wallet.Wallet, error) {
	u, err := activeUser()
	if err != nil {
		return sim.Actor{}, nil, err
	}
	w, err := activeWallet(u)
	if err != nil {
		return sim.Actor{}, nil, err
	}
	return sim.Actor{User: u, Wallet: w.Address, Chain: activeChain()}, w, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", sim.ErrInvalidAmount, s)
	}
	return d, nil
}

// pickRecipient resolves the destination of a send or NFT transfer. Missing
// parts are chosen interactively; the actor's own wallet is never offered.
func pickRecipient(a sim.Actor, toUser, toWallet string) (string, string, error) {
	if toUser == "" {
		entries, err := simr.Wallets().ListAll()
		if err != nil {
			return "", "", err
		}
		var items []ui.PickerItem
		for _, e := range entries {
			if e.User == a.User && strings.EqualFold(e.Address, a.Wallet) {
				continue
			}
			items = append(items, ui.PickerItem{
				Label:    e.User + " / " + e.Nickname,
				SubLabel: ui.TruncateAddr(e.Address),
				Value:    e.User + "\x00" + e.Address,
			})
		}
		if len(items) == 0 {
			return "", "", errors.New("no other wallets to send to")
		}
		v, err := ui.PickItem("Send to", items)
		if err != nil || v == "" {
			return "", "", cancelled(err)
		}
		parts := strings.SplitN(v, "\x00", 2)
		return parts[0], parts[1], nil
	}

	if err := simr.Users().Require(toUser); err != nil {
		return "", "", fmt.Errorf("recipient: %w", err)
	}
	if toWallet == "" {
		ws, err := simr.Wallets().List(toUser)
		if err != nil {
			return "", "", err
		}
		if len(ws) == 1 {
			return toUser, ws[0].Address, nil
		}
		v, err := ui.PickItem("Recipient wallet of "+toUser, walletItems(ws, ""))
		if err != nil || v == "" {
			return "", "", cancelled(err)
		}
		return toUser, v, nil
	}
	w, err := simr.Wallets().Resolve(toUser, toWallet)
	if err != nil {
		return "", "", fmt.Errorf("recipient: %w", err)
	}
	return toUser, w.Address, nil
}

func walletItems(ws []*wallet.Wallet, current string) []ui.PickerItem {
	items := make([]ui.PickerItem, 0, len(ws))
	for _, w := range ws {
		items = append(items, ui.PickerItem{
			Label:    w.Nickname,
			SubLabel: ui.TruncateAddr(w.Address),
			Value:    w.Address,
			Current:  strings.EqualFold(w.Address, current),
		})
	}
	return items
}

var errCancelled = errors.New("cancelled")

func cancelled(err error) error {
	if err != nil {
		return err
	}
	return errCancelled
}
