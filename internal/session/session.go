// Package session remembers which user, wallet and chain the CLI acts as
// between invocations.
package session

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/simchain/internal/store"
)

const fileName = "session.json"

// ErrNotLoggedIn is returned when a command needs an active user.
var ErrNotLoggedIn = errors.New("not logged in, run: simchain login <user>")

// Session is the active selection.
type Session struct {
	User   string `json:"user,omitempty"`
	Wallet string `json:"wallet,omitempty"`
	Chain  string `json:"chain,omitempty"`

	path string
}

// Load reads the session kept in dir. A missing file is an empty session.
func Load(dir string) (*Session, error) {
	path := filepath.Join(dir, fileName)
	s, err := store.Load[Session](path)
	if err != nil {
		return nil, err
	}
	s.path = path
	return &s, nil
}

// Save persists the session with 0600 permissions.
func (s *Session) Save() error {
	return store.Write(s.path, s)
}

// Login switches to user, forgetting the previous wallet.
func (s *Session) Login(user string) {
	if s.User != user {
		s.Wallet = ""
	}
	s.User = user
}

// Clear removes the session file.
func (s *Session) Clear() error {
	s.User, s.Wallet, s.Chain = "", "", ""
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RequireUser returns the active user or ErrNotLoggedIn.
func (s *Session) RequireUser() (string, error) {
	if s.User == "" {
		return "", ErrNotLoggedIn
	}
	return s.User, nil
}
