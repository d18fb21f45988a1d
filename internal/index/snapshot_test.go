package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verse-companion-api/internal/models"
)

func snapshotEntries() map[string]models.EmbeddingEntry {
	return map[string]models.EmbeddingEntry{
		"v1": {VerseID: "v1", Vector: []float64{0.1, 0.2, 0.3}, Text: "first verse", Source: "Psalms", MoodTags: []string{"peace"}},
		"v2": {VerseID: "v2", Vector: []float64{-0.5, 0.25, 0.125}, Text: "second verse", Source: "Proverbs", MoodTags: nil},
	}
}

func testVersion() models.IndexVersion {
	return models.IndexVersion{
		Version:     "1.0",
		TotalVerses: 2,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Model:       "test-model",
	}
}

func TestSnapshot_SaveLoadRoundTrip(t *testing.T) {
	s := NewSnapshot(t.TempDir())
	entries := snapshotEntries()
	version := testVersion()

	require.NoError(t, s.Save(entries, version))

	loaded, loadedVersion, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, version.Version, loadedVersion.Version)
	assert.Equal(t, version.Model, loadedVersion.Model)
	assert.Equal(t, version.TotalVerses, loadedVersion.TotalVerses)
	assert.True(t, version.CreatedAt.Equal(loadedVersion.CreatedAt))

	require.Len(t, loaded, len(entries))
	for id, want := range entries {
		got, ok := loaded[id]
		require.True(t, ok, "missing entry %s", id)
		assert.Equal(t, want.Text, got.Text)
		assert.Equal(t, want.Source, got.Source)
		assert.Equal(t, want.MoodTags, got.MoodTags)
		require.Len(t, got.Vector, len(want.Vector))
		for i := range want.Vector {
			assert.InDelta(t, want.Vector[i], got.Vector[i], 1e-6)
		}
	}
}

func TestSnapshot_LoadMissingIsNotFound(t *testing.T) {
	s := NewSnapshot(t.TempDir())

	_, _, err := s.Load()
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshot_CorruptFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshot(dir)
	require.NoError(t, s.Save(snapshotEntries(), testVersion()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "verse_embeddings.json"), []byte("{not json"), 0o644))

	_, _, err := s.Load()
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshot_MissingDescriptorIsNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshot(dir)
	require.NoError(t, s.Save(snapshotEntries(), testVersion()))

	require.NoError(t, os.Remove(filepath.Join(dir, "version.json")))

	_, _, err := s.Load()
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshot_Compatible(t *testing.T) {
	s := NewSnapshot(t.TempDir())
	version := testVersion()

	assert.True(t, s.Compatible(version, "1.0", "test-model"))
	assert.False(t, s.Compatible(version, "2.0", "test-model"))
	assert.False(t, s.Compatible(version, "1.0", "other-model"), "a different model id must always be incompatible")
}

func TestSnapshot_Clear(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshot(dir)
	require.NoError(t, s.Save(snapshotEntries(), testVersion()))
	require.NoError(t, s.Clear())

	_, _, err := s.Load()
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.Zero(t, s.SizeBytes())

	// Clearing an already-empty dir is fine.
	require.NoError(t, s.Clear())
}

func TestSnapshot_SizeBytes(t *testing.T) {
	s := NewSnapshot(t.TempDir())
	assert.Zero(t, s.SizeBytes())

	require.NoError(t, s.Save(snapshotEntries(), testVersion()))
	assert.Positive(t, s.SizeBytes())
}
