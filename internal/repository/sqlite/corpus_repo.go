package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/verse-companion-api/internal/models"
	"github.com/verse-companion-api/internal/repository"
)

// CorpusRepository implements repository.CorpusRepository for SQLite,
// intended for local development and single-node deployments.
type CorpusRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite corpus database at path and
// ensures the verses table exists.
func Open(path string) (*CorpusRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create corpus dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS verses (
			verse_id  TEXT PRIMARY KEY,
			text      TEXT NOT NULL,
			source    TEXT NOT NULL DEFAULT '',
			mood_tags TEXT NOT NULL DEFAULT '[]'
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure verses table: %w", err)
	}

	return &CorpusRepository{db: db}, nil
}

// Close closes the underlying database
func (r *CorpusRepository) Close() error {
	return r.db.Close()
}

// ListAll returns every verse ordered by verse_id
func (r *CorpusRepository) ListAll(ctx context.Context) ([]models.VerseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT verse_id, text, source, mood_tags
		FROM verses
		ORDER BY verse_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list verses: %w", err)
	}
	defer rows.Close()

	var verses []models.VerseRecord
	for rows.Next() {
		var (
			v       models.VerseRecord
			rawTags string
		)
		if err := rows.Scan(&v.VerseID, &v.Text, &v.Source, &rawTags); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		v.MoodTags = decodeMoodTags(rawTags)
		verses = append(verses, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verses: %w", err)
	}

	if verses == nil {
		verses = []models.VerseRecord{}
	}
	return verses, nil
}

// Get returns a single verse by id
func (r *CorpusRepository) Get(ctx context.Context, verseID string) (*models.VerseRecord, error) {
	var (
		v       models.VerseRecord
		rawTags string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT verse_id, text, source, mood_tags
		FROM verses
		WHERE verse_id = ?
	`, verseID).Scan(&v.VerseID, &v.Text, &v.Source, &rawTags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrVerseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get verse %s: %w", verseID, err)
	}

	v.MoodTags = decodeMoodTags(rawTags)
	return &v, nil
}

// Ping verifies database connectivity
func (r *CorpusRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert adds or replaces a verse. Used by the seed tool; the retrieval
// engine itself never writes to the corpus.
func (r *CorpusRepository) Insert(ctx context.Context, v models.VerseRecord) error {
	tags, err := json.Marshal(v.MoodTags)
	if err != nil {
		return fmt.Errorf("encode mood tags: %w", err)
	}
	if v.MoodTags == nil {
		tags = []byte("[]")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO verses (verse_id, text, source, mood_tags)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(verse_id) DO UPDATE SET
			text = excluded.text,
			source = excluded.source,
			mood_tags = excluded.mood_tags
	`, v.VerseID, v.Text, v.Source, string(tags))
	if err != nil {
		return fmt.Errorf("insert verse %s: %w", v.VerseID, err)
	}
	return nil
}

func decodeMoodTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}
