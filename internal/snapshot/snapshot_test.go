package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingReturnsNotOK(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Load("news")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	st := State{
		LastSeenID:    "abc123",
		SeenIDs:       []string{"abc123", "abc122"},
		ProviderState: map[string]string{"cursor": "42"},
	}
	require.NoError(t, store.Save("news", st))

	loaded, ok, err := store.Load("news")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc123", loaded.LastSeenID)
	assert.Equal(t, []string{"abc123", "abc122"}, loaded.SeenIDs)
	assert.Equal(t, "42", loaded.ProviderState["cursor"])
}

func TestStore_SaveOverwritesPreviousState(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("social", State{LastSeenID: "1"}))
	require.NoError(t, store.Save("social", State{LastSeenID: "2"}))

	loaded, ok, err := store.Load("social")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", loaded.LastSeenID)

	// no stray temp file left behind
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
