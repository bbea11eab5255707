//go:build !windows

package secrets

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"sql-bridge/internal/platform/paths"
)

var errNoSecretService = errors.New("org.freedesktop.secrets was not provided by any .service files")

// The default for every test in the package is an unreachable keyring, so
// nothing touches the real one.
func TestMain(m *testing.M) {
	keyring.MockInitWithError(errNoSecretService)
	os.Exit(m.Run())
}

func withKeyring(t *testing.T) {
	keyring.MockInit()
	t.Cleanup(func() { keyring.MockInitWithError(errNoSecretService) })
}

func TestKeyringPreferred(t *testing.T) {
	t.Setenv(paths.HomeEnv, t.TempDir())
	withKeyring(t)
	key := DBPasswordKey("mysql", "db.example.com")

	require.NoError(t, Set(key, []byte("s3cret")))

	stored, err := keyring.Get(keyringService, sanitizeKey(key))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", stored)

	p, err := secretFilePath(key)
	require.NoError(t, err)
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err), "no file when the keyring works")

	got, err := Get(key)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(got))

	require.NoError(t, Delete(key))
	_, err = Get(key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileFallbackWithoutKeyring(t *testing.T) {
	t.Setenv(paths.HomeEnv, t.TempDir())
	key := DBPasswordKey("postgres", "pg.local")

	require.NoError(t, Set(key, []byte("fallback")))

	p, err := secretFilePath(key)
	require.NoError(t, err)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Get(key)
	require.NoError(t, err)
	assert.Equal(t, "fallback", string(got))

	require.NoError(t, Delete(key))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestKeyringMigratesFallbackFile(t *testing.T) {
	t.Setenv(paths.HomeEnv, t.TempDir())
	key := DBPasswordKey("mssql", "sql.local")

	require.NoError(t, Set(key, []byte("old")))
	p, err := secretFilePath(key)
	require.NoError(t, err)

	withKeyring(t)
	got, err := Get(key)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got), "file still readable")

	require.NoError(t, Set(key, []byte("new")))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err), "keyring write removes the file copy")

	got, err = Get(key)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
