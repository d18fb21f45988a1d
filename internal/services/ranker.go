package services

import (
	"math"
	"sort"

	"github.com/verse-companion-api/internal/models"
)

// moodConflicts maps a query mood to verse tags considered incompatible
// with it. A verse tagged with a conflicting mood is withheld; a verse with
// no tags at all is applicable to any mood and never filtered here.
var moodConflicts = map[string][]string{
	"sadness": {"happy", "joy", "celebration"},
	"happy":   {"sadness", "sorrow", "grief"},
	"angry":   {"peace", "calm", "serenity"},
	"fear":    {"courage", "strength", "confidence"},
}

// ConflictsWithMood reports whether any of the verse's tags conflict with
// the query mood per the static conflict table.
func ConflictsWithMood(mood string, tags []string) bool {
	conflicting := moodConflicts[mood]
	if len(conflicting) == 0 || len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		for _, c := range conflicting {
			if tag == c {
				return true
			}
		}
	}
	return false
}

// scoredEntry pairs an index entry with its similarity to the query.
type scoredEntry struct {
	entry models.EmbeddingEntry
	score float64
}

// Rank scores every surviving entry against the query vector and returns
// the top k as ranked verses. Fewer than k candidates is not an error; the
// result is simply shorter.
func Rank(entries []models.EmbeddingEntry, queryVec []float64, mood string, excludedIDs []string, k int) []models.RankedVerse {
	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}

	scored := make([]scoredEntry, 0, len(entries))
	for _, entry := range entries {
		if excluded[entry.VerseID] {
			continue
		}
		if mood != "" && ConflictsWithMood(mood, entry.MoodTags) {
			continue
		}
		scored = append(scored, scoredEntry{
			entry: entry,
			score: CosineSimilarity(queryVec, entry.Vector),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].entry.VerseID < scored[j].entry.VerseID
	})

	if k > len(scored) {
		k = len(scored)
	}

	results := make([]models.RankedVerse, 0, k)
	for _, s := range scored[:k] {
		results = append(results, models.RankedVerse{
			VerseID:         s.entry.VerseID,
			Text:            s.entry.Text,
			Source:          s.entry.Source,
			SimilarityScore: s.score,
			MoodTags:        s.entry.MoodTags,
		})
	}
	return results
}

// CosineSimilarity returns the normalized dot product of two vectors in
// [-1, 1], or 0 when the dimensions differ or either norm is zero.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
