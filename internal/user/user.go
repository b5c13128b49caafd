// Package user manages the user directory. A user is nothing more than a
// folder under <data>/users holding that user's wallet, balance and
// transaction files.
package user

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/simchain/internal/store"
)

// Errors.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUserExists   = fmt.Errorf("%w: username already exists", ErrInvalidInput)
	ErrUserNotFound = errors.New("user not found")
)

// Directory lists and creates users.
type Directory struct {
	root string
}

// NewDirectory returns a directory rooted at usersDir.
func NewDirectory(usersDir string) *Directory {
	return &Directory{root: usersDir}
}

// Root returns the users directory.
func (d *Directory) Root() string {
	return d.root
}

// Path returns the directory holding user's files.
func (d *Directory) Path(name string) string {
	return filepath.Join(d.root, name)
}

// List returns every user, sorted.
func (d *Directory) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Exists reports whether name is a valid user with a directory.
func (d *Directory) Exists(name string) bool {
	if Validate(name) != nil {
		return false
	}
	info, err := os.Stat(d.Path(name))
	return err == nil && info.IsDir()
}

// Require returns ErrInvalidInput for names that can't be users and
// ErrUserNotFound for valid names without a directory.
func (d *Directory) Require(name string) error {
	if err := Validate(name); err != nil {
		return err
	}
	if !d.Exists(name) {
		return fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	return nil
}

// Create validates and registers a new user with empty wallet, balance and
// transaction files. It returns the trimmed name.
func (d *Directory) Create(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := Validate(name); err != nil {
		return "", err
	}
	if d.Exists(name) {
		return "", fmt.Errorf("%w: %s", ErrUserExists, name)
	}

	dir := d.Path(name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating user dir: %w", err)
	}
	seed := map[string]any{
		"wallets.json":      []any{},
		"balances.json":     map[string]any{},
		"transactions.json": []any{},
	}
	for file, empty := range seed {
		path := filepath.Join(dir, file)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := store.Write(path, empty); err != nil {
			return "", err
		}
	}
	return name, nil
}

// Validate checks that name can be used as a user directory.
func Validate(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: username can't be empty", ErrInvalidInput)
	case name != strings.TrimSpace(name):
		return fmt.Errorf("%w: username has surrounding spaces", ErrInvalidInput)
	case name == "." || name == "..", strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: username can't start with a dot", ErrInvalidInput)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: username can't contain path separators", ErrInvalidInput)
	}
	return nil
}
