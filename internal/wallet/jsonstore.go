package wallet

import (
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/simchain/internal/store"
)

const walletsFile = "wallets.json"

// JSONStore keeps wallets in <root>/<user>/wallets.json as a JSON array.
type JSONStore struct {
	root string
}

// NewJSONStore creates a store rooted at the users directory.
func NewJSONStore(usersDir string) *JSONStore {
	return &JSONStore{root: usersDir}
}

func (s *JSONStore) path(user string) string {
	return filepath.Join(s.root, user, walletsFile)
}

// Load reads user's wallets. A missing file yields an empty list.
func (s *JSONStore) Load(user string) ([]*Wallet, error) {
	return store.Load[[]*Wallet](s.path(user))
}

// Update applies fn to user's wallet list under the file lock.
func (s *JSONStore) Update(user string, fn func([]*Wallet) ([]*Wallet, error)) error {
	return store.Update(s.path(user), func(ws *[]*Wallet) error {
		out, err := fn(*ws)
		if err != nil {
			return err
		}
		if out == nil {
			out = []*Wallet{}
		}
		*ws = out
		return nil
	})
}

// Users lists every user directory that holds a wallet file, sorted.
func (s *JSONStore) Users() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, "*", walletsFile))
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(filepath.Dir(m))
		if name == "" || name[0] == '.' {
			continue
		}
		if info, err := os.Stat(m); err != nil || info.IsDir() {
			continue
		}
		users = append(users, name)
	}
	return users, nil
}
