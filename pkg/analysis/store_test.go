package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, "meeting-1")
	require.NoError(t, err)

	record := NewRecord("meeting-1", "https://meet.example.com/1")
	record.Summary = "We agreed on the Q3 roadmap."
	record.KeyPoints = []string{"roadmap locked", "hiring freeze lifted"}
	record.Participants = []string{"Alice", "Bob"}
	record.WordCount = 42
	require.NoError(t, store.Save(record))

	loaded := NewRecord("meeting-1", "")
	require.NoError(t, store.Load(loaded))

	assert.Equal(t, "We agreed on the Q3 roadmap.", loaded.Summary)
	assert.Equal(t, []string{"roadmap locked", "hiring freeze lifted"}, loaded.KeyPoints)
	assert.Equal(t, []string{"Alice", "Bob"}, loaded.Participants)
	assert.Equal(t, 42, loaded.WordCount)
	assert.Equal(t, "https://meet.example.com/1", loaded.MeetingURL)
}

func TestStore_LoadWithoutPriorFileIsNotAnError(t *testing.T) {
	store, err := NewStore(t.TempDir(), "meeting-1")
	require.NoError(t, err)

	record := NewRecord("meeting-1", "")
	record.Summary = "untouched"
	require.NoError(t, store.Load(record))
	assert.Equal(t, "untouched", record.Summary)
}

func TestStore_LoadPicksNewestFileForIdentity(t *testing.T) {
	dir := t.TempDir()

	write := func(stamp int64, summary string) {
		path := filepath.Join(dir, fmt.Sprintf("meeting_analysis_m1_%d.json", stamp))
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`{"meeting_id":"m1","summary":%q}`, summary)), 0644))
	}
	write(100, "old")
	write(200, "new")
	// A different meeting's file must not be picked up.
	path := filepath.Join(dir, "meeting_analysis_other_999.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"meeting_id":"other","summary":"wrong"}`), 0644))

	store, err := NewStore(dir, "m1")
	require.NoError(t, err)

	record := NewRecord("m1", "")
	require.NoError(t, store.Load(record))
	assert.Equal(t, "new", record.Summary)
}

func TestStore_PathIsStableAndIdentityKeyed(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, "weekly-sync")
	require.NoError(t, err)

	assert.Equal(t, store.Path(), store.Path())
	assert.Contains(t, filepath.Base(store.Path()), "meeting_analysis_weekly-sync_")
}

func TestLoadLatest(t *testing.T) {
	dir := t.TempDir()

	record, err := LoadLatest(dir, "m1")
	require.NoError(t, err)
	assert.Nil(t, record)

	store, err := NewStore(dir, "m1")
	require.NoError(t, err)
	saved := NewRecord("m1", "https://meet.example.com/m1")
	saved.Sentiment = "positive"
	saved.LastUpdated = time.Now()
	require.NoError(t, store.Save(saved))

	record, err = LoadLatest(dir, "m1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "positive", record.Sentiment)
}
