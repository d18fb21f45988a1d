package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verse-companion-api/internal/models"
)

// ErrSnapshotNotFound is returned by Load when no usable snapshot exists on
// disk. Missing files, torn writes and structurally corrupt files are all
// reported the same way; the caller rebuilds from the corpus in every case.
var ErrSnapshotNotFound = errors.New("index snapshot not found")

const (
	embeddingsFile = "verse_embeddings.json"
	metadataFile   = "verse_metadata.json"
	versionFile    = "version.json"
)

// Snapshot persists the index to a directory as three artifacts: the
// id->vector mapping, the denormalized per-verse metadata, and a small
// version descriptor. The descriptor is written last and checked first, so
// its absence or mismatch is the single signal that the other two artifacts
// cannot be trusted.
type Snapshot struct {
	dir string
}

// NewSnapshot creates a snapshot rooted at dir
func NewSnapshot(dir string) *Snapshot {
	return &Snapshot{dir: dir}
}

// entryMetadata is the persisted per-verse metadata, kept separate from the
// vectors so the metadata artifact stays human-readable.
type entryMetadata struct {
	Text     string   `json:"text"`
	Source   string   `json:"source"`
	MoodTags []string `json:"mood_tags"`
}

// Load reads the persisted index. It returns ErrSnapshotNotFound when the
// snapshot is missing or unreadable, never a fatal error for corruption.
func (s *Snapshot) Load() (map[string]models.EmbeddingEntry, models.IndexVersion, error) {
	var version models.IndexVersion
	if err := readJSON(filepath.Join(s.dir, versionFile), &version); err != nil {
		return nil, models.IndexVersion{}, ErrSnapshotNotFound
	}

	var vectors map[string][]float64
	if err := readJSON(filepath.Join(s.dir, embeddingsFile), &vectors); err != nil {
		return nil, models.IndexVersion{}, ErrSnapshotNotFound
	}

	var metadata map[string]entryMetadata
	if err := readJSON(filepath.Join(s.dir, metadataFile), &metadata); err != nil {
		return nil, models.IndexVersion{}, ErrSnapshotNotFound
	}

	entries := make(map[string]models.EmbeddingEntry, len(vectors))
	for verseID, vec := range vectors {
		meta, ok := metadata[verseID]
		if !ok {
			// Vector without metadata means the pair of artifacts is
			// inconsistent; treat the whole snapshot as unusable.
			return nil, models.IndexVersion{}, ErrSnapshotNotFound
		}
		entries[verseID] = models.EmbeddingEntry{
			VerseID:  verseID,
			Vector:   vec,
			Text:     meta.Text,
			Source:   meta.Source,
			MoodTags: meta.MoodTags,
		}
	}

	return entries, version, nil
}

// Compatible reports whether a loaded descriptor matches the engine's
// current version tag and model identifier.
func (s *Snapshot) Compatible(version models.IndexVersion, currentTag, currentModel string) bool {
	return version.Version == currentTag && version.Model == currentModel
}

// Save writes all three artifacts. Each file is written to a temp path and
// renamed into place; the version descriptor goes last so a crash mid-save
// leaves a snapshot that Load reports as not found.
func (s *Snapshot) Save(entries map[string]models.EmbeddingEntry, version models.IndexVersion) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create embeddings dir: %w", err)
	}

	vectors := make(map[string][]float64, len(entries))
	metadata := make(map[string]entryMetadata, len(entries))
	for verseID, e := range entries {
		vectors[verseID] = e.Vector
		metadata[verseID] = entryMetadata{
			Text:     e.Text,
			Source:   e.Source,
			MoodTags: e.MoodTags,
		}
	}

	// Remove the old descriptor up front: from here until the new one lands,
	// concurrent loaders must see "no snapshot" rather than a mixed state.
	if err := removeIfExists(filepath.Join(s.dir, versionFile)); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(s.dir, embeddingsFile), vectors); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(s.dir, metadataFile), metadata); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(s.dir, versionFile), version); err != nil {
		return err
	}

	return nil
}

// Clear removes all persisted artifacts
func (s *Snapshot) Clear() error {
	for _, name := range []string{versionFile, embeddingsFile, metadataFile} {
		if err := removeIfExists(filepath.Join(s.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// SizeBytes returns the combined on-disk size of the snapshot artifacts
func (s *Snapshot) SizeBytes() int64 {
	var total int64
	for _, name := range []string{versionFile, embeddingsFile, metadataFile} {
		if info, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			total += info.Size()
		}
	}
	return total
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", filepath.Base(path), err)
	}
	return nil
}
