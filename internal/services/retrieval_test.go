package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verse-companion-api/internal/index"
	"github.com/verse-companion-api/internal/models"
)

// fakeEmbeddings implements index.Embeddings with canned vectors.
type fakeEmbeddings struct {
	available bool
	queryVec  []float64
	queryErr  error
}

func (f *fakeEmbeddings) Available() bool { return f.available }

func (f *fakeEmbeddings) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryVec, nil
}

func (f *fakeEmbeddings) EmbedVerse(ctx context.Context, text string) ([]float64, error) {
	return f.queryVec, nil
}

func newTestRetrieval(t *testing.T, entries []models.EmbeddingEntry, embeddings *fakeEmbeddings, corpus *fakeCorpus) (*RetrievalService, *index.Store) {
	t.Helper()

	store := index.NewStore()
	byID := make(map[string]models.EmbeddingEntry, len(entries))
	for _, e := range entries {
		byID[e.VerseID] = e
	}
	store.ReplaceAll(byID, models.IndexVersion{Version: "1.0", Model: "test-model", TotalVerses: len(entries)})

	snapshot := index.NewSnapshot(t.TempDir())
	return NewRetrievalService(store, snapshot, embeddings, corpus), store
}

func TestFindRelevantVerses_SemanticPath(t *testing.T) {
	svc, _ := newTestRetrieval(t, rankerEntries(), &fakeEmbeddings{available: true, queryVec: []float64{1, 0, 0}}, fallbackCorpus())

	results := svc.FindRelevantVerses(context.Background(), "a hard day", "", nil, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].VerseID)
	assert.GreaterOrEqual(t, results[0].SimilarityScore, results[1].SimilarityScore)
}

func TestFindRelevantVerses_SadnessScenario(t *testing.T) {
	entries := []models.EmbeddingEntry{
		{VerseID: "A", Text: "I feel hope amid hardship", Vector: []float64{0.9, 0.1, 0}, MoodTags: []string{"hope"}},
		{VerseID: "B", Text: "Joyful celebration of life", Vector: []float64{0.95, 0.05, 0}, MoodTags: []string{"happy"}},
		{VerseID: "C", Text: "Quiet comfort in sorrow", Vector: []float64{0.8, 0.2, 0}, MoodTags: []string{"comfort", "sad"}},
	}
	svc, _ := newTestRetrieval(t, entries, &fakeEmbeddings{available: true, queryVec: []float64{1, 0, 0}}, fallbackCorpus())

	results := svc.FindRelevantVerses(context.Background(), "I am going through a hard time", "sadness", nil, 1)
	require.Len(t, results, 1)
	assert.NotEqual(t, "B", results[0].VerseID, "mood conflict must exclude the celebration verse")
	assert.Contains(t, []string{"A", "C"}, results[0].VerseID)
}

func TestFindRelevantVerses_EncoderUnavailableUsesFallback(t *testing.T) {
	svc, _ := newTestRetrieval(t, rankerEntries(), &fakeEmbeddings{available: false}, fallbackCorpus())

	// No corpus tag equals this mood, so the scan degrades to the first record.
	results := svc.FindRelevantVerses(context.Background(), "anything", "no-such-mood", nil, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "v1", results[0].VerseID)
	assert.InDelta(t, 0.5, results[0].SimilarityScore, 1e-9)
}

func TestFindRelevantVerses_EmptyIndexUsesFallback(t *testing.T) {
	svc, _ := newTestRetrieval(t, nil, &fakeEmbeddings{available: true, queryVec: []float64{1, 0}}, fallbackCorpus())

	results := svc.FindRelevantVerses(context.Background(), "anything", "", nil, 3)
	require.NotEmpty(t, results)
	assert.Equal(t, "v1", results[0].VerseID)
}

func TestFindRelevantVerses_QueryEmbedFailureUsesFallback(t *testing.T) {
	svc, _ := newTestRetrieval(t, rankerEntries(), &fakeEmbeddings{available: true, queryErr: errors.New("model gone")}, fallbackCorpus())

	results := svc.FindRelevantVerses(context.Background(), "anything", "", nil, 1)
	require.NotEmpty(t, results)
	assert.InDelta(t, 0.5, results[0].SimilarityScore, 1e-9)
}

func TestFindRelevantVerses_KDefaultsToOne(t *testing.T) {
	svc, _ := newTestRetrieval(t, rankerEntries(), &fakeEmbeddings{available: true, queryVec: []float64{1, 0, 0}}, fallbackCorpus())

	results := svc.FindRelevantVerses(context.Background(), "anything", "", nil, 0)
	assert.Len(t, results, 1)
}

func TestTruncateForDisplay(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "short verse.", TruncateForDisplay("short verse."))
	})

	t.Run("sentence boundary preferred", func(t *testing.T) {
		text := strings.Repeat("x", 449) + "." + strings.Repeat("y", 200)
		got := TruncateForDisplay(text)
		assert.Equal(t, 453, len(got))
		assert.True(t, strings.HasSuffix(got, "...."), "cut at the period, ellipsis appended")
	})

	t.Run("early boundary ignored", func(t *testing.T) {
		text := strings.Repeat("x", 100) + "." + strings.Repeat("y", 500)
		got := TruncateForDisplay(text)
		assert.Equal(t, 503, len(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("no boundary hard cut", func(t *testing.T) {
		text := strings.Repeat("z", 600)
		got := TruncateForDisplay(text)
		assert.Equal(t, 503, len(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("multibyte text cut on rune boundary", func(t *testing.T) {
		text := strings.Repeat("é", 600)
		got := TruncateForDisplay(text)
		assert.True(t, utf8.ValidString(got), "truncation must never produce invalid UTF-8")
		assert.Equal(t, 503, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("multibyte text keeps sentence boundary", func(t *testing.T) {
		text := strings.Repeat("é", 300) + "." + strings.Repeat("é", 300)
		got := TruncateForDisplay(text)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, 304, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, "...."))
	})

	t.Run("truncation law", func(t *testing.T) {
		inputs := []string{
			strings.Repeat("a", 501),
			strings.Repeat("b. ", 300),
			strings.Repeat("c", 250) + "." + strings.Repeat("c", 400),
		}
		for _, text := range inputs {
			got := TruncateForDisplay(text)
			assert.LessOrEqual(t, len(got), 503)
			assert.True(t, strings.HasSuffix(got, ".") || strings.HasSuffix(got, "..."))
		}
	})
}

func TestIndexStatus(t *testing.T) {
	svc, store := newTestRetrieval(t, rankerEntries(), &fakeEmbeddings{available: true}, fallbackCorpus())

	status := svc.IndexStatus()
	assert.Equal(t, "1.0", status.Version)
	assert.Equal(t, "test-model", status.Model)
	assert.Equal(t, store.Len(), status.EntryCount)
	assert.True(t, status.SemanticOK)
}

func TestIndexStatus_UnavailableEncoder(t *testing.T) {
	svc, _ := newTestRetrieval(t, rankerEntries(), &fakeEmbeddings{available: false}, fallbackCorpus())
	assert.False(t, svc.IndexStatus().SemanticOK)
}
