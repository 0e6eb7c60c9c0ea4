// =================================
// File: internal/registry/registry_test.go
// =================================
package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpforge/launchpad/internal/types"
)

func testEntry(symbol string) Entry {
	return Entry{
		Token:       types.NewAddress(),
		Curve:       types.NewAddress(),
		Name:        "Token " + symbol,
		Symbol:      symbol,
		MetadataURI: "ipfs://" + symbol,
		Creator:     types.NewAddress(),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryPutGet(t *testing.T) {
	reg := NewMemory()
	entry := testEntry("AAA")

	require.NoError(t, reg.Put(entry))
	got, err := reg.Get(entry.Token)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestMemoryDuplicate(t *testing.T) {
	reg := NewMemory()
	entry := testEntry("AAA")

	require.NoError(t, reg.Put(entry))
	assert.ErrorIs(t, reg.Put(entry), ErrDuplicate)
}

func TestMemoryGetUnknown(t *testing.T) {
	reg := NewMemory()
	_, err := reg.Get(types.NewAddress())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListOrder(t *testing.T) {
	reg := NewMemory()
	first := testEntry("ONE")
	second := testEntry("TWO")
	third := testEntry("TRE")

	for _, e := range []Entry{first, second, third} {
		require.NoError(t, reg.Put(e))
	}

	entries, err := reg.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, first.Token, entries[0].Token)
	assert.Equal(t, second.Token, entries[1].Token)
	assert.Equal(t, third.Token, entries[2].Token)
}
