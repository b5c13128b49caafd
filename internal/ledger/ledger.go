package ledger

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/store"
)

const fileName = "transactions.json"

// Store appends to and reads <root>/<user>/transactions.json.
type Store struct {
	root string
}

// NewStore creates a ledger rooted at the users directory.
func NewStore(usersDir string) *Store {
	return &Store{root: usersDir}
}

func (s *Store) path(user string) string {
	return filepath.Join(s.root, user, fileName)
}

// Append stamps and appends recs to user's history in one write.
func (s *Store) Append(user string, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	for _, r := range recs {
		Stamp(r)
	}
	err := store.Update(s.path(user), func(rs *Records) error {
		*rs = append(*rs, recs...)
		return nil
	})
	if err != nil {
		return err
	}
	for _, r := range recs {
		logger.Log.Debug("ledger: appended",
			zap.String("user", user),
			zap.String("type", string(r.Kind())),
			zap.String("hash", r.Base().Hash))
	}
	return nil
}

// Load returns user's history, oldest first.
func (s *Store) Load(user string) (Records, error) {
	return store.Load[Records](s.path(user))
}

// Stamp fills in a missing id, timestamp and hash.
func Stamp(r Record) {
	m := r.Base()
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = store.Now()
	}
	if m.Hash == "" {
		m.Hash = Hash(r)
	}
}

// Hash derives a Keccak-256 transaction hash from the record's identity.
func Hash(r Record) string {
	m := r.Base()
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.Join([]string{
		string(r.Kind()),
		m.ID,
		m.Wallet,
		m.Chain,
		m.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z"),
		m.GasFee.String(),
	}, "|")))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// ForWallet keeps the records whose wallet matches address, in order.
func ForWallet(rs Records, address string) Records {
	var out Records
	for _, r := range rs {
		if strings.EqualFold(r.Base().Wallet, address) {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns at most n records, newest first. n <= 0 means all.
func Latest(rs Records, n int) Records {
	if n <= 0 || n > len(rs) {
		n = len(rs)
	}
	out := make(Records, 0, n)
	for i := len(rs) - 1; i >= len(rs)-n; i-- {
		out = append(out, rs[i])
	}
	return out
}
