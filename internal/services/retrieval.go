package services

import (
	"context"
	"log"

	"github.com/verse-companion-api/internal/index"
	"github.com/verse-companion-api/internal/models"
	"github.com/verse-companion-api/internal/repository"
)

const (
	// displayThreshold is the length above which verse text is truncated
	// for display.
	displayThreshold = 500
)

// RetrievalService is the public entry point for verse retrieval. It ranks
// against the in-memory index when the embedding backend is usable and the
// index is populated, and otherwise degrades to the fallback scan. It never
// mutates persisted state; upsert and regenerate live on the Builder.
type RetrievalService struct {
	store      *index.Store
	snapshot   *index.Snapshot
	embeddings index.Embeddings
	fallback   *FallbackSelector
}

// NewRetrievalService creates a retrieval service
func NewRetrievalService(store *index.Store, snapshot *index.Snapshot, embeddings index.Embeddings, corpus repository.CorpusRepository) *RetrievalService {
	return &RetrievalService{
		store:      store,
		snapshot:   snapshot,
		embeddings: embeddings,
		fallback:   NewFallbackSelector(corpus),
	}
}

// FindRelevantVerses returns up to k verses relevant to the query, skipping
// excluded ids and verses whose tags conflict with the given mood.
func (s *RetrievalService) FindRelevantVerses(ctx context.Context, query, mood string, excludedIDs []string, k int) []models.RankedVerse {
	if k < 1 {
		k = 1
	}

	results := s.rankOrFallback(ctx, query, mood, excludedIDs, k)
	for i := range results {
		results[i].Text = TruncateForDisplay(results[i].Text)
	}
	return results
}

func (s *RetrievalService) rankOrFallback(ctx context.Context, query, mood string, excludedIDs []string, k int) []models.RankedVerse {
	if !s.embeddings.Available() || s.store.Len() == 0 {
		return s.fallback.Scan(ctx, mood, excludedIDs)
	}

	queryVec, err := s.embeddings.EmbedQuery(ctx, query)
	if err != nil {
		log.Printf("Query embedding failed, using fallback: %v", err)
		return s.fallback.Scan(ctx, mood, excludedIDs)
	}

	return Rank(s.store.Entries(), queryVec, mood, excludedIDs, k)
}

// IndexStatus reports the operational state of the index
func (s *RetrievalService) IndexStatus() models.IndexStatus {
	version, count := s.store.Stats()
	status := models.IndexStatus{
		Version:    version.Version,
		EntryCount: count,
		Model:      version.Model,
		SizeBytes:  s.snapshot.SizeBytes(),
		SemanticOK: s.embeddings.Available() && count > 0,
	}
	if !version.CreatedAt.IsZero() {
		builtAt := version.CreatedAt
		status.BuiltAt = &builtAt
	}
	return status
}

// TruncateForDisplay shortens verse text that exceeds the display
// threshold. It prefers cutting at the last sentence boundary at or before
// the threshold, provided that boundary falls past 40% of the threshold;
// otherwise it cuts hard. An ellipsis marks any truncation. The threshold
// counts runes, not bytes, so multibyte text is never cut mid-rune.
func TruncateForDisplay(text string) string {
	runes := []rune(text)
	if len(runes) <= displayThreshold {
		return text
	}

	truncated := runes[:displayThreshold]
	lastPeriod := -1
	for i := len(truncated) - 1; i >= 0; i-- {
		if truncated[i] == '.' {
			lastPeriod = i
			break
		}
	}
	if lastPeriod > displayThreshold*2/5 {
		return string(truncated[:lastPeriod+1]) + "..."
	}
	return string(truncated) + "..."
}
