// Package balance keeps each user's play-money USDC balances, one file per
// user mapping wallet address to holdings.
package balance

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/store"
)

// ErrInsufficientFunds is returned when a debit exceeds the available balance.
var ErrInsufficientFunds = errors.New("insufficient balance")

const fileName = "balances.json"

// Holdings is the per-address record. Only USDC exists in the simulation.
type Holdings struct {
	USDC decimal.Decimal `json:"USDC"`
}

// File is the on-disk shape of balances.json.
type File map[string]Holdings

// Store reads and mutates balances under <root>/<user>/balances.json.
type Store struct {
	root string
}

// NewStore creates a balance store rooted at the users directory.
func NewStore(usersDir string) *Store {
	return &Store{root: usersDir}
}

func (s *Store) path(user string) string {
	return filepath.Join(s.root, user, fileName)
}

// Get returns the balance of address, zero when it has never been touched.
func (s *Store) Get(user, address string) (decimal.Decimal, error) {
	f, err := store.Load[File](s.path(user))
	if err != nil {
		return decimal.Zero, err
	}
	return f[address].USDC, nil
}

// All returns every address balance held by user.
func (s *Store) All(user string) (map[string]decimal.Decimal, error) {
	f, err := store.Load[File](s.path(user))
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(f))
	for addr, h := range f {
		out[addr] = h.USDC
	}
	return out, nil
}

// ApplyDelta adds delta to the balance without any sufficiency check.
func (s *Store) ApplyDelta(user, address string, delta decimal.Decimal) error {
	return store.Update(s.path(user), func(f *File) error {
		f.add(address, delta)
		return nil
	})
}

// Charge debits amount only if the balance covers it.
func (s *Store) Charge(user, address string, amount decimal.Decimal) error {
	return store.Update(s.path(user), func(f *File) error {
		if have := (*f)[address].USDC; have.LessThan(amount) {
			return fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, have.StringFixed(2), amount.StringFixed(2))
		}
		f.add(address, amount.Neg())
		return nil
	})
}

// Withdraw removes amount from the balance (off-ramp to fiat).
func (s *Store) Withdraw(user, address string, amount decimal.Decimal) error {
	err := s.Charge(user, address, amount)
	if errors.Is(err, ErrInsufficientFunds) {
		return fmt.Errorf("insufficient USDC to off-ramp: %w", err)
	}
	return err
}

// Transfer moves amount from the sender to the recipient and burns gas from
// the sender. The sender must hold amount+gas; otherwise neither balance
// changes. Both files are locked for the duration and written together.
func (s *Store) Transfer(senderUser, senderAddr, recipientUser, recipientAddr string, amount, gas decimal.Decimal) error {
	debit := amount.Add(gas)
	senderPath, recipientPath := s.path(senderUser), s.path(recipientUser)

	unlock, err := store.Lock(senderPath, recipientPath)
	if err != nil {
		return err
	}
	defer unlock()

	sender, err := store.Load[File](senderPath)
	if err != nil {
		return err
	}
	if have := sender[senderAddr].USDC; have.LessThan(debit) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, have.StringFixed(2), debit.StringFixed(2))
	}

	if senderPath == recipientPath {
		sender.add(senderAddr, debit.Neg())
		sender.add(recipientAddr, amount)
		return store.Write(senderPath, sender)
	}

	recipient, err := store.Load[File](recipientPath)
	if err != nil {
		return err
	}
	sender.add(senderAddr, debit.Neg())
	recipient.add(recipientAddr, amount)

	if err := store.Commit(
		store.Pending{Path: senderPath, Value: sender},
		store.Pending{Path: recipientPath, Value: recipient},
	); err != nil {
		return err
	}
	logger.Log.Debug("balance: transfer committed",
		zap.String("from_user", senderUser), zap.String("to_user", recipientUser),
		zap.String("amount", amount.String()), zap.String("gas", gas.String()))
	return nil
}

func (f *File) add(address string, delta decimal.Decimal) {
	if *f == nil {
		*f = make(File)
	}
	h := (*f)[address]
	h.USDC = h.USDC.Add(delta)
	(*f)[address] = h
}
