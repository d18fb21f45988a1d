package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verse-companion-api/internal/models"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"dimension mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestConflictsWithMood(t *testing.T) {
	assert.True(t, ConflictsWithMood("sadness", []string{"joy"}))
	assert.True(t, ConflictsWithMood("happy", []string{"comfort", "grief"}))
	assert.False(t, ConflictsWithMood("sadness", []string{"comfort", "sad"}))
	assert.False(t, ConflictsWithMood("sadness", nil))
	assert.False(t, ConflictsWithMood("unknown-mood", []string{"joy"}))
}

func rankerEntries() []models.EmbeddingEntry {
	return []models.EmbeddingEntry{
		{VerseID: "a", Text: "hope amid hardship", Source: "Psalms", Vector: []float64{1, 0, 0}, MoodTags: []string{"hope"}},
		{VerseID: "b", Text: "joyful celebration", Source: "Psalms", Vector: []float64{0.9, 0.1, 0}, MoodTags: []string{"happy"}},
		{VerseID: "c", Text: "quiet comfort in sorrow", Source: "Psalms", Vector: []float64{0.5, 0.5, 0}, MoodTags: []string{"comfort", "sad"}},
		{VerseID: "d", Text: "untagged verse", Source: "Proverbs", Vector: []float64{0, 1, 0}, MoodTags: nil},
	}
}

func TestRank_OrdersByDescendingSimilarity(t *testing.T) {
	results := Rank(rankerEntries(), []float64{1, 0, 0}, "", nil, 10)
	require.Len(t, results, 4)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].SimilarityScore, results[i].SimilarityScore)
	}
	assert.Equal(t, "a", results[0].VerseID)
	assert.InDelta(t, 1.0, results[0].SimilarityScore, 1e-9)
}

func TestRank_RespectsK(t *testing.T) {
	results := Rank(rankerEntries(), []float64{1, 0, 0}, "", nil, 2)
	assert.Len(t, results, 2)
}

func TestRank_KExceedsCandidates(t *testing.T) {
	results := Rank(rankerEntries(), []float64{1, 0, 0}, "", nil, 100)
	assert.Len(t, results, 4)

	results = Rank(nil, []float64{1, 0, 0}, "", nil, 5)
	assert.Empty(t, results)
}

func TestRank_ExcludedIDsNeverReturned(t *testing.T) {
	results := Rank(rankerEntries(), []float64{1, 0, 0}, "", []string{"a", "b"}, 10)
	for _, r := range results {
		assert.NotContains(t, []string{"a", "b"}, r.VerseID)
	}
	assert.Len(t, results, 2)
}

func TestRank_MoodConflictFiltered(t *testing.T) {
	results := Rank(rankerEntries(), []float64{1, 0, 0}, "sadness", nil, 10)
	for _, r := range results {
		assert.NotEqual(t, "b", r.VerseID, "verse tagged happy must not surface for sadness")
	}
}

func TestRank_EmptyTagSetNeverMoodFiltered(t *testing.T) {
	results := Rank(rankerEntries(), []float64{0, 1, 0}, "sadness", nil, 10)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.VerseID)
	}
	assert.Contains(t, ids, "d")
}

func TestRank_TiesBrokenByVerseID(t *testing.T) {
	entries := []models.EmbeddingEntry{
		{VerseID: "z", Vector: []float64{1, 0}},
		{VerseID: "a", Vector: []float64{1, 0}},
		{VerseID: "m", Vector: []float64{1, 0}},
	}

	results := Rank(entries, []float64{1, 0}, "", nil, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].VerseID)
	assert.Equal(t, "m", results[1].VerseID)
	assert.Equal(t, "z", results[2].VerseID)
}

func TestRank_CarriesMetadata(t *testing.T) {
	results := Rank(rankerEntries(), []float64{1, 0, 0}, "", nil, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "hope amid hardship", results[0].Text)
	assert.Equal(t, "Psalms", results[0].Source)
	assert.Equal(t, []string{"hope"}, results[0].MoodTags)
}
