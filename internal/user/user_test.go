package user_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/simchain/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEmptyWhenNoRoot(t *testing.T) {
	dir := user.NewDirectory(filepath.Join(t.TempDir(), "users"))
	users, err := dir.List()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestCreateInitialisesFiles(t *testing.T) {
	root := t.TempDir()
	dir := user.NewDirectory(root)

	name, err := dir.Create("  alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	for file, want := range map[string]string{
		"wallets.json":      `[]`,
		"balances.json":     `{}`,
		"transactions.json": `[]`,
	} {
		data, err := os.ReadFile(filepath.Join(root, "alice", file))
		require.NoError(t, err, file)
		assert.JSONEq(t, want, string(data), file)
	}
	assert.True(t, dir.Exists("alice"))
	assert.NoError(t, dir.Require("alice"))
}

func TestCreateDuplicate(t *testing.T) {
	dir := user.NewDirectory(t.TempDir())
	_, err := dir.Create("bob")
	require.NoError(t, err)

	_, err = dir.Create("bob")
	assert.ErrorIs(t, err, user.ErrUserExists)
	assert.ErrorIs(t, err, user.ErrInvalidInput)
}

func TestCreateRejectsBadNames(t *testing.T) {
	dir := user.NewDirectory(t.TempDir())
	for _, name := range []string{"", "   ", "..", ".hidden", "a/b", `a\b`} {
		_, err := dir.Create(name)
		assert.ErrorIs(t, err, user.ErrInvalidInput, "name %q", name)
	}
}

func TestListSortedDirectoriesOnly(t *testing.T) {
	root := t.TempDir()
	dir := user.NewDirectory(root)
	for _, n := range []string{"carol", "alice", "bob"} {
		_, err := dir.Create(n)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.json"), []byte("{}"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(root, ".tmp"), 0o700))

	users, err := dir.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, users)
}

func TestRequireMissing(t *testing.T) {
	dir := user.NewDirectory(t.TempDir())
	assert.ErrorIs(t, dir.Require("ghost"), user.ErrUserNotFound)
}

func TestRequireRejectsNamesOutsideUsersDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data", "users")
	dir := user.NewDirectory(root)
	_, err := dir.Create("alice")
	require.NoError(t, err)

	// ".." and "../.." point at real directories above the users dir.
	for _, name := range []string{"..", "../..", ".", "alice/..", "", " alice"} {
		assert.False(t, dir.Exists(name), "name %q", name)
		err := dir.Require(name)
		assert.ErrorIs(t, err, user.ErrInvalidInput, "name %q", name)
		assert.NotErrorIs(t, err, user.ErrUserNotFound, "name %q", name)
	}
}
