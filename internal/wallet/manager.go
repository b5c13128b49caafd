package wallet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/store"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrAmbiguous      = errors.New("wallet reference is ambiguous")
	ErrInvalidKey     = errors.New("invalid private key")
)

// Wallet is a generated keypair with an optional nickname. The key is never
// used for signing; it exists so the simulation looks like the real thing.
type Wallet struct {
	Address    string     `json:"address"`
	PrivateKey string     `json:"private_key,omitempty"`
	Nickname   string     `json:"nickname"`
	KeyRef     string     `json:"key_ref,omitempty"` // keychain reference when the key is not in the file
	CreatedAt  store.Time `json:"created_at,omitzero"`
}

// Entry is a wallet annotated with its owner, as used by recipient pickers.
type Entry struct {
	User     string `json:"user_id"`
	Address  string `json:"address"`
	Nickname string `json:"nickname"`
}

// Store persists each user's ordered wallet list.
type Store interface {
	Load(user string) ([]*Wallet, error)
	Update(user string, fn func([]*Wallet) ([]*Wallet, error)) error
	Users() ([]string, error)
}

// Manager handles wallet CRUD.
type Manager struct {
	store Store
	keys  KeystoreBackend
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = newMemStore()
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystore moves private keys out of the wallet file into ks.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) {
		m.keys = ks
	}
}

// NewManager creates a new wallet manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{store: newMemStore()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create generates a fresh keypair for user and appends it to their list.
func (m *Manager) Create(user, nickname string) (*Wallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	hexKey := hexutil.Encode(crypto.FromECDSA(key))
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()
	return m.add(user, nickname, addr, hexKey)
}

// Import adds a wallet for an existing hex private key.
func (m *Manager) Import(user, nickname, hexKey string) (*Wallet, error) {
	raw := normaliseHexKey(hexKey)
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()
	return m.add(user, nickname, addr, "0x"+raw)
}

func (m *Manager) add(user, nickname, addr, hexKey string) (*Wallet, error) {
	w := &Wallet{
		Address:   addr,
		Nickname:  strings.TrimSpace(nickname),
		CreatedAt: store.Now(),
	}
	if m.keys != nil {
		ref, err := m.keys.Store(user+"."+addr, hexKey)
		if err != nil {
			return nil, fmt.Errorf("storing key: %w", err)
		}
		w.KeyRef = ref
	} else {
		w.PrivateKey = hexKey
	}

	err := m.store.Update(user, func(ws []*Wallet) ([]*Wallet, error) {
		if indexOf(ws, addr) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrWalletExists, addr)
		}
		return append(ws, w), nil
	})
	if err != nil {
		if w.KeyRef != "" {
			_ = m.keys.Delete(w.KeyRef)
		}
		return nil, err
	}
	logger.Log.Info("wallet created", zap.String("user", user), zap.String("address", addr))
	return w, nil
}

// List returns user's wallets in creation order.
func (m *Manager) List(user string) ([]*Wallet, error) {
	return m.store.Load(user)
}

// ListAll returns the wallets of every user, users in sorted order and each
// user's wallets in creation order. A user whose wallet file cannot be
// parsed is skipped.
func (m *Manager) ListAll() ([]Entry, error) {
	users, err := m.store.Users()
	if err != nil {
		return nil, err
	}

	perUser := make([][]*Wallet, len(users))
	var g errgroup.Group
	g.SetLimit(8)
	for i, u := range users {
		g.Go(func() error {
			ws, err := m.store.Load(u)
			if err != nil {
				logger.Log.Warn("skipping unreadable wallet file", zap.String("user", u), zap.Error(err))
				return nil
			}
			perUser[i] = ws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Entry
	for i, ws := range perUser {
		for _, w := range ws {
			out = append(out, Entry{User: users[i], Address: w.Address, Nickname: w.Nickname})
		}
	}
	return out, nil
}

// Get returns the wallet with the given address (case-insensitive).
func (m *Manager) Get(user, address string) (*Wallet, error) {
	ws, err := m.store.Load(user)
	if err != nil {
		return nil, err
	}
	if i := indexOf(ws, address); i >= 0 {
		return ws[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, address)
}

// Resolve finds a wallet by full address, nickname, or a unique address
// prefix of at least four characters.
func (m *Manager) Resolve(user, ref string) (*Wallet, error) {
	ref = strings.TrimSpace(ref)
	ws, err := m.store.Load(user)
	if err != nil {
		return nil, err
	}
	if i := indexOf(ws, ref); i >= 0 {
		return ws[i], nil
	}

	var byNick []*Wallet
	for _, w := range ws {
		if w.Nickname != "" && strings.EqualFold(w.Nickname, ref) {
			byNick = append(byNick, w)
		}
	}
	if len(byNick) == 1 {
		return byNick[0], nil
	}
	if len(byNick) > 1 {
		return nil, fmt.Errorf("%w: %d wallets named %q", ErrAmbiguous, len(byNick), ref)
	}

	if len(ref) >= 4 {
		var byPrefix []*Wallet
		for _, w := range ws {
			if strings.HasPrefix(strings.ToLower(w.Address), strings.ToLower(ref)) {
				byPrefix = append(byPrefix, w)
			}
		}
		if len(byPrefix) == 1 {
			return byPrefix[0], nil
		}
		if len(byPrefix) > 1 {
			return nil, fmt.Errorf("%w: %d wallets start with %q", ErrAmbiguous, len(byPrefix), ref)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, ref)
}

// Rename sets the nickname of the wallet at address. Unknown addresses are
// ignored.
func (m *Manager) Rename(user, address, nickname string) error {
	return m.store.Update(user, func(ws []*Wallet) ([]*Wallet, error) {
		if i := indexOf(ws, address); i >= 0 {
			ws[i].Nickname = strings.TrimSpace(nickname)
		}
		return ws, nil
	})
}

// Delete removes every wallet with address. Unknown addresses are ignored.
func (m *Manager) Delete(user, address string) error {
	var removed []*Wallet
	err := m.store.Update(user, func(ws []*Wallet) ([]*Wallet, error) {
		kept := ws[:0:0]
		for _, w := range ws {
			if strings.EqualFold(w.Address, address) {
				removed = append(removed, w)
				continue
			}
			kept = append(kept, w)
		}
		return kept, nil
	})
	if err != nil {
		return err
	}
	for _, w := range removed {
		if w.KeyRef != "" && m.keys != nil {
			if err := m.keys.Delete(w.KeyRef); err != nil {
				logger.Log.Warn("could not delete wallet key", zap.String("ref", w.KeyRef), zap.Error(err))
			}
		}
	}
	return nil
}

// PrivateKey returns the hex private key of a wallet, wherever it is kept.
func (m *Manager) PrivateKey(user, address string) (string, error) {
	w, err := m.Get(user, address)
	if err != nil {
		return "", err
	}
	if w.PrivateKey != "" {
		return w.PrivateKey, nil
	}
	if w.KeyRef == "" || m.keys == nil {
		return "", fmt.Errorf("no private key stored for %s", w.Address)
	}
	return m.keys.Retrieve(w.KeyRef)
}

func indexOf(ws []*Wallet, address string) int {
	for i, w := range ws {
		if strings.EqualFold(w.Address, address) {
			return i
		}
	}
	return -1
}

// --- in-memory store ---

type memStore struct {
	mu      sync.Mutex
	wallets map[string][]*Wallet
}

func newMemStore() *memStore {
	return &memStore{wallets: make(map[string][]*Wallet)}
}

func (s *memStore) Load(user string) ([]*Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Wallet(nil), s.wallets[user]...), nil
}

func (s *memStore) Update(user string, fn func([]*Wallet) ([]*Wallet, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := fn(append([]*Wallet(nil), s.wallets[user]...))
	if err != nil {
		return err
	}
	s.wallets[user] = out
	return nil
}

func (s *memStore) Users() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.wallets))
	for u := range s.wallets {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

// Short abbreviates an address as 0x1234…abcd.
func Short(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}

// Label renders a wallet as "nickname (0x1234…abcd)", or its address when it
// has no nickname.
func Label(nickname, address string) string {
	if nickname == "" {
		return address
	}
	return nickname + " (" + Short(address) + ")"
}
