package credentials

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/database"
)

func newTestStore(t *testing.T) *Store {
	db, err := database.New(database.Config{
		Path:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		Profile: database.ProfileStandard,
		Name:    "credentials",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put("polly", map[string]string{"access_key": "AKIA...", "secret_key": "shh"}))

	snap, ok, err := store.Get("polly")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "polly", snap.Provider)
	assert.Equal(t, "AKIA...", snap.Fields["access_key"])
	assert.Equal(t, 1, snap.Version)
}

func TestStore_PutTwiceIncrementsVersion(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put("news_source_x", map[string]string{"api_key": "v1"}))
	require.NoError(t, store.Put("news_source_x", map[string]string{"api_key": "v2"}))

	snap, ok, err := store.Get("news_source_x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", snap.Fields["api_key"])
	assert.Equal(t, 2, snap.Version)
}

func TestStore_GetMissingProviderReturnsNotOK(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.Get("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DeleteRemovesFromDBAndMirror(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put("premium_tts_a", map[string]string{"token": "abc"}))
	require.NoError(t, store.Delete("premium_tts_a"))

	_, ok, err := store.Get("premium_tts_a")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.loadFromMirror("premium_tts_a")
	require.NoError(t, err)
	assert.False(t, ok, "mirror file should be removed too")
}

func TestStore_ListReturnsAllProviders(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put("polly", map[string]string{"k": "v"}))
	require.NoError(t, store.Put("premium_tts_a", map[string]string{"k": "v"}))

	providers, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"polly", "premium_tts_a"}, providers)
}

func TestStore_MirrorFileSurvivesAndRecoversWhenDBUnreachable(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put("polly", map[string]string{"access_key": "AKIA..."}))

	snap, ok, err := store.loadFromMirror("polly")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.db.Close())
	recovered, ok, err := store.Get("polly")
	require.NoError(t, err, "Get should fall back to the mirror once the database is closed")
	require.True(t, ok)
	assert.Equal(t, snap.Fields, recovered.Fields)
	assert.Equal(t, "AKIA...", snap.Fields["access_key"])
}
