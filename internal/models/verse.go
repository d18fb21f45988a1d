package models

import "time"

// VerseRecord is a verse as stored in the corpus. MoodTags may be empty,
// which means the verse is applicable to any mood.
type VerseRecord struct {
	VerseID  string   `json:"verse_id" db:"verse_id"`
	Text     string   `json:"text" db:"text"`
	Source   string   `json:"source" db:"source"`
	MoodTags []string `json:"mood_tags"`
}

// EmbeddingEntry is a verse with its embedding vector plus a denormalized
// copy of the corpus metadata, cached inside the index. The metadata is
// refreshed only by an explicit upsert or a full rebuild.
type EmbeddingEntry struct {
	VerseID  string    `json:"verse_id"`
	Vector   []float64 `json:"vector"`
	Text     string    `json:"text"`
	Source   string    `json:"source"`
	MoodTags []string  `json:"mood_tags"`
}

// IndexVersion describes a persisted index snapshot. A snapshot is usable
// only when both Version and Model match the running configuration.
type IndexVersion struct {
	Version     string    `json:"version"`
	TotalVerses int       `json:"total_verses"`
	CreatedAt   time.Time `json:"created_at"`
	Model       string    `json:"model"`
}

// RankedVerse is a verse annotated with its similarity score, as returned
// to the web layer. Text may be truncated for display.
type RankedVerse struct {
	VerseID         string   `json:"verse_id"`
	Text            string   `json:"text"`
	Source          string   `json:"source"`
	SimilarityScore float64  `json:"similarity_score"`
	MoodTags        []string `json:"mood_tags"`
}

// IndexStatus is the operational view of the index for admins.
type IndexStatus struct {
	Version    string     `json:"version"`
	EntryCount int        `json:"entry_count"`
	Model      string     `json:"model"`
	BuiltAt    *time.Time `json:"built_at,omitempty"`
	SizeBytes  int64      `json:"size_bytes"`
	SemanticOK bool       `json:"semantic_ok"`
}

// RecommendRequest is the request for verse recommendation
type RecommendRequest struct {
	Query      string   `json:"query" validate:"required"`
	Mood       string   `json:"mood"`
	ExcludeIDs []string `json:"exclude_ids"`
	K          int      `json:"k" validate:"min=1,max=50"`
}

// RecommendResponse is the response for verse recommendation
type RecommendResponse struct {
	Query   string        `json:"query"`
	Results []RankedVerse `json:"results"`
}

// UpsertRequest is the request for a single-verse index update
type UpsertRequest struct {
	VerseID string `json:"verse_id" validate:"required"`
}
