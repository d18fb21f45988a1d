package repository

import (
	"context"
	"errors"

	"github.com/verse-companion-api/internal/models"
)

// ErrVerseNotFound is returned by Get when no verse has the requested id.
var ErrVerseNotFound = errors.New("verse not found")

// CorpusRepository defines read access to the verse catalog. The retrieval
// engine never writes through this interface; the catalog is owned by the
// CRUD layer.
type CorpusRepository interface {
	// ListAll returns every verse in the corpus in stable catalog order
	ListAll(ctx context.Context) ([]models.VerseRecord, error)

	// Get returns the verse with the given id, or ErrVerseNotFound
	Get(ctx context.Context, verseID string) (*models.VerseRecord, error)

	// Ping verifies the backing store is reachable
	Ping(ctx context.Context) error
}
