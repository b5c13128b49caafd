// Package store implements the locked, atomic JSON file primitives every
// SimChain store is built on.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/simchain/internal/logger"
)

func init() {
	// Amounts are stored as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

const filePerm = 0o600

var (
	mu    sync.Mutex
	locks = make(map[string]*sync.Mutex)

	// rename is swapped in tests to simulate a failing commit.
	rename = os.Rename
)

func pathMutex(path string) *sync.Mutex {
	mu.Lock()
	defer mu.Unlock()
	m, ok := locks[path]
	if !ok {
		m = &sync.Mutex{}
		locks[path] = m
	}
	return m
}

// Lock takes an exclusive lock on every path: an in-process mutex plus an
// advisory file lock on "<path>.lock" so separate processes serialise too.
// Paths are locked in sorted order. The returned func releases all of them.
func Lock(paths ...string) (func(), error) {
	uniq := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		if !seen[abs] {
			seen[abs] = true
			uniq = append(uniq, abs)
		}
	}
	sort.Strings(uniq)

	var held []func()
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}

	for _, p := range uniq {
		m := pathMutex(p)
		m.Lock()
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			m.Unlock()
			release()
			return nil, err
		}
		fl := flock.New(p + ".lock")
		if err := fl.Lock(); err != nil {
			m.Unlock()
			release()
			return nil, fmt.Errorf("locking %s: %w", p, err)
		}
		held = append(held, func() {
			_ = fl.Unlock()
			m.Unlock()
		})
	}
	return release, nil
}

// Load reads a JSON file into a T. A missing or empty file yields the zero value.
func Load[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	if err != nil {
		return v, err
	}
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return v, nil
}

// Write replaces path with the indented JSON encoding of v.
func Write(path string, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp, err := stage(path, data)
	if err != nil {
		return err
	}
	if err := rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	logger.Log.Debug("store: wrote file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Update locks path, loads it, applies fn and writes the result back.
// Nothing is written when fn returns an error.
func Update[T any](path string, fn func(*T) error) error {
	unlock, err := Lock(path)
	if err != nil {
		return err
	}
	defer unlock()

	v, err := Load[T](path)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return Write(path, &v)
}

// Pending is one file write taking part in a Commit.
type Pending struct {
	Path  string
	Value any
}

type snapshot struct {
	data   []byte
	exists bool
}

// Commit writes several files as one unit. Every value is encoded and staged
// before any target is replaced; if replacing a later target fails, targets
// already replaced are restored to their previous content. Callers must
// hold the locks for every path.
func Commit(writes ...Pending) error {
	encoded := make([][]byte, len(writes))
	prior := make([]snapshot, len(writes))
	for i, w := range writes {
		data, err := encode(w.Value)
		if err != nil {
			return err
		}
		encoded[i] = data

		old, err := os.ReadFile(w.Path)
		switch {
		case err == nil:
			prior[i] = snapshot{data: old, exists: true}
		case errors.Is(err, os.ErrNotExist):
		default:
			return err
		}
	}

	staged := make([]string, len(writes))
	cleanup := func(from int) {
		for _, tmp := range staged[from:] {
			if tmp != "" {
				os.Remove(tmp)
			}
		}
	}
	for i, w := range writes {
		if err := os.MkdirAll(filepath.Dir(w.Path), 0o700); err != nil {
			cleanup(0)
			return err
		}
		tmp, err := stage(w.Path, encoded[i])
		if err != nil {
			cleanup(0)
			return err
		}
		staged[i] = tmp
	}

	for i, w := range writes {
		if err := rename(staged[i], w.Path); err != nil {
			cleanup(i)
			restore(writes[:i], prior[:i])
			return fmt.Errorf("committing %s: %w", filepath.Base(w.Path), err)
		}
	}
	logger.Log.Debug("store: committed files", zap.Int("count", len(writes)))
	return nil
}

func restore(writes []Pending, prior []snapshot) {
	for i, w := range writes {
		var err error
		if prior[i].exists {
			err = os.WriteFile(w.Path, prior[i].data, filePerm)
		} else {
			err = os.Remove(w.Path)
		}
		if err != nil {
			logger.Log.Error("store: rollback failed", zap.String("path", w.Path), zap.Error(err))
		}
	}
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// stage writes data to a temp file beside path and returns its name.
func stage(path string, data []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, filePerm); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}
