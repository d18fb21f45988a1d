package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/verse-companion-api/internal/models"
	"github.com/verse-companion-api/internal/repository"
)

// CorpusRepository implements repository.CorpusRepository for PostgreSQL
type CorpusRepository struct {
	db *sqlx.DB
}

// NewCorpusRepository creates a new PostgreSQL corpus repository
func NewCorpusRepository(db *sqlx.DB) repository.CorpusRepository {
	return &CorpusRepository{db: db}
}

// ListAll returns every verse ordered by verse_id
func (r *CorpusRepository) ListAll(ctx context.Context) ([]models.VerseRecord, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT verse_id, text, source, COALESCE(mood_tags, '[]') AS mood_tags
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
	err := r.db.QueryRowxContext(ctx, `
		SELECT verse_id, text, source, COALESCE(mood_tags, '[]') AS mood_tags
		FROM verses
		WHERE verse_id = $1
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

// decodeMoodTags parses the JSON mood_tags column. A malformed or empty
// value degrades to no tags rather than failing the read.
func decodeMoodTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}
