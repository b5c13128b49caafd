package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	N int `json:"n"`
}

// ---------------------------------------------------------------------------
// Load / Write
// ---------------------------------------------------------------------------

func TestLoadMissingFileReturnsZero(t *testing.T) {
	v, err := Load[[]string](filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLoadEmptyFileReturnsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	v, err := Load[map[string]int](path)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLoadCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load[map[string]int](path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestWriteCreatesParentsAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.json")
	require.NoError(t, Write(path, counter{N: 7}))

	got, err := Load[counter](path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.N)
}

func TestWriteRestrictivePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perm.json")
	require.NoError(t, Write(path, counter{N: 1}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(filepath.Join(dir, "x.json"), counter{N: 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.json", entries[0].Name())
}

func TestDecimalsWrittenAsNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, Write(path, map[string]decimal.Decimal{"USDC": decimal.RequireFromString("398.5")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"USDC": 398.5`)
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestUpdateAppliesMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	for i := 0; i < 3; i++ {
		require.NoError(t, Update(path, func(c *counter) error {
			c.N++
			return nil
		}))
	}
	got, err := Load[counter](path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.N)
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	require.NoError(t, Write(path, counter{N: 1}))

	boom := errors.New("boom")
	err := Update(path, func(c *counter) error {
		c.N = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := Load[counter](path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.N)
}

func TestUpdateConcurrentNoLostWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Update(path, func(c *counter) error {
				c.N++
				return nil
			}))
		}()
	}
	wg.Wait()

	got, err := Load[counter](path)
	require.NoError(t, err)
	assert.Equal(t, 20, got.N)
}

// ---------------------------------------------------------------------------
// Lock
// ---------------------------------------------------------------------------

func TestLockDuplicatePathsDoNotDeadlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.json")
	unlock, err := Lock(path, path)
	require.NoError(t, err)
	unlock()

	// Lock is reusable once released.
	unlock, err = Lock(path)
	require.NoError(t, err)
	unlock()
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

func TestCommitWritesAllFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "u1", "a.json")
	b := filepath.Join(dir, "u2", "b.json")

	require.NoError(t, Commit(Pending{Path: a, Value: counter{N: 1}}, Pending{Path: b, Value: counter{N: 2}}))

	ga, err := Load[counter](a)
	require.NoError(t, err)
	gb, err := Load[counter](b)
	require.NoError(t, err)
	assert.Equal(t, 1, ga.N)
	assert.Equal(t, 2, gb.N)
}

func TestCommitRollsBackOnFailure(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	fresh := filepath.Join(dir, "fresh.json")
	require.NoError(t, Write(a, counter{N: 1}))
	require.NoError(t, Write(b, counter{N: 1}))

	calls := 0
	rename = func(from, to string) error {
		calls++
		if calls == 3 {
			return errors.New("disk full")
		}
		return os.Rename(from, to)
	}
	t.Cleanup(func() { rename = os.Rename })

	err := Commit(
		Pending{Path: a, Value: counter{N: 10}},
		Pending{Path: fresh, Value: counter{N: 10}},
		Pending{Path: b, Value: counter{N: 10}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	ga, err := Load[counter](a)
	require.NoError(t, err)
	gb, err := Load[counter](b)
	require.NoError(t, err)
	assert.Equal(t, 1, ga.N, "first file restored")
	assert.Equal(t, 1, gb.N, "failed file untouched")

	_, statErr := os.Stat(fresh)
	assert.True(t, os.IsNotExist(statErr), "file that did not exist before is removed")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "staged temp files cleaned up")
	}
}
