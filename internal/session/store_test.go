package session_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/internal/session"
)

func newTestStore(t *testing.T) *session.SQLiteStore {
	t.Helper()
	store, err := session.NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "session.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreEmptyByDefault(t *testing.T) {
	store := newTestStore(t)

	access, err := store.Access()
	require.NoError(t, err)
	require.Empty(t, access)

	refresh, err := store.Refresh()
	require.NoError(t, err)
	require.Empty(t, refresh)
}

func TestStoreSetPairRoundtrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetPair("a1", "r1"))

	access, err := store.Access()
	require.NoError(t, err)
	require.Equal(t, "a1", access)

	refresh, err := store.Refresh()
	require.NoError(t, err)
	require.Equal(t, "r1", refresh)
}

func TestStoreSetAccessKeepsRefresh(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetPair("a1", "r1"))
	require.NoError(t, store.SetAccess("a2"))

	access, err := store.Access()
	require.NoError(t, err)
	require.Equal(t, "a2", access)

	refresh, err := store.Refresh()
	require.NoError(t, err)
	require.Equal(t, "r1", refresh)
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetPair("a1", "r1"))
	require.NoError(t, store.Clear())

	access, err := store.Access()
	require.NoError(t, err)
	require.Empty(t, access)

	refresh, err := store.Refresh()
	require.NoError(t, err)
	require.Empty(t, refresh)

	// clearing an empty store is fine
	require.NoError(t, store.Clear())
}
