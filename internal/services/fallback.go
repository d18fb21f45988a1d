package services

import (
	"context"
	"log"

	"github.com/verse-companion-api/internal/models"
	"github.com/verse-companion-api/internal/repository"
)

const (
	// fallbackLimit caps how many verses the linear scan returns.
	fallbackLimit = 5

	// neutralScore is reported when no semantic signal is available.
	neutralScore = 0.5
)

// placeholderVerse is returned when the corpus itself is empty; retrieval
// must always produce a result.
var placeholderVerse = models.RankedVerse{
	VerseID:         "placeholder",
	Text:            "Be still, and know that there is peace even in hard moments.",
	Source:          "Verse Companion",
	SimilarityScore: neutralScore,
	MoodTags:        []string{},
}

// FallbackSelector picks verses by a deterministic linear scan over the
// corpus when semantic ranking cannot run. With no similarity signal to
// temper a looser filter, mood matching here is strict tag equality rather
// than the ranker's conflict-table heuristic.
type FallbackSelector struct {
	corpus repository.CorpusRepository
}

// NewFallbackSelector creates a fallback selector over the corpus
func NewFallbackSelector(corpus repository.CorpusRepository) *FallbackSelector {
	return &FallbackSelector{corpus: corpus}
}

// Scan returns up to fallbackLimit verses in corpus order. When the filters
// eliminate everything it falls back to the first corpus record, and when
// the corpus is empty it returns a synthetic placeholder.
func (f *FallbackSelector) Scan(ctx context.Context, mood string, excludedIDs []string) []models.RankedVerse {
	verses, err := f.corpus.ListAll(ctx)
	if err != nil {
		log.Printf("Fallback corpus scan failed: %v", err)
		return []models.RankedVerse{placeholderVerse}
	}
	if len(verses) == 0 {
		return []models.RankedVerse{placeholderVerse}
	}

	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}

	results := make([]models.RankedVerse, 0, fallbackLimit)
	for _, verse := range verses {
		if excluded[verse.VerseID] {
			continue
		}
		if mood != "" && !containsTag(verse.MoodTags, mood) {
			continue
		}
		results = append(results, toRankedVerse(verse))
		if len(results) == fallbackLimit {
			break
		}
	}

	if len(results) == 0 {
		results = append(results, toRankedVerse(verses[0]))
	}
	return results
}

func toRankedVerse(v models.VerseRecord) models.RankedVerse {
	tags := v.MoodTags
	if tags == nil {
		tags = []string{}
	}
	return models.RankedVerse{
		VerseID:         v.VerseID,
		Text:            v.Text,
		Source:          v.Source,
		SimilarityScore: neutralScore,
		MoodTags:        tags,
	}
}

func containsTag(tags []string, mood string) bool {
	for _, t := range tags {
		if t == mood {
			return true
		}
	}
	return false
}
