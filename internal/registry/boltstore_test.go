// =================================
// File: internal/registry/boltstore_test.go
// =================================
package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpforge/launchpad/internal/types"
)

func openTestStore(t *testing.T) (*BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	store, err := OpenBolt(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestBoltPutGet(t *testing.T) {
	store, _ := openTestStore(t)
	entry := testEntry("AAA")

	require.NoError(t, store.Put(entry))
	got, err := store.Get(entry.Token)
	require.NoError(t, err)
	assert.Equal(t, entry.Token, got.Token)
	assert.Equal(t, entry.Curve, got.Curve)
	assert.Equal(t, entry.Symbol, got.Symbol)
	assert.Equal(t, entry.Creator, got.Creator)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
}

func TestBoltDuplicate(t *testing.T) {
	store, _ := openTestStore(t)
	entry := testEntry("AAA")

	require.NoError(t, store.Put(entry))
	assert.ErrorIs(t, store.Put(entry), ErrDuplicate)
}

func TestBoltGetUnknown(t *testing.T) {
	store, _ := openTestStore(t)
	_, err := store.Get(types.NewAddress())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoltListOrder(t *testing.T) {
	store, _ := openTestStore(t)
	first := testEntry("ONE")
	second := testEntry("TWO")
	third := testEntry("TRE")

	for _, e := range []Entry{first, second, third} {
		require.NoError(t, store.Put(e))
	}

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, first.Token, entries[0].Token)
	assert.Equal(t, second.Token, entries[1].Token)
	assert.Equal(t, third.Token, entries[2].Token)
}

func TestBoltSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := OpenBolt(context.Background(), path)
	require.NoError(t, err)
	entry := testEntry("KEEP")
	require.NoError(t, store.Put(entry))
	require.NoError(t, store.Close())

	reopened, err := OpenBolt(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(entry.Token)
	require.NoError(t, err)
	assert.Equal(t, entry.Symbol, got.Symbol)

	entries, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBoltCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "registry.db")
	store, err := OpenBolt(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
