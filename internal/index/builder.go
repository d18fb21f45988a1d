package index

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/verse-companion-api/internal/models"
	"github.com/verse-companion-api/internal/repository"
)

// Embeddings is what the index layer needs from the embeddings service.
type Embeddings interface {
	Available() bool
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
	EmbedVerse(ctx context.Context, text string) ([]float64, error)
}

// Builder produces and maintains the store from the corpus. All mutating
// operations are serialized by a single mutex, so a regenerate can never
// interleave with an upsert; readers keep using the store's last complete
// state while a build is in flight.
type Builder struct {
	store      *Store
	snapshot   *Snapshot
	corpus     repository.CorpusRepository
	embeddings Embeddings
	versionTag string
	modelID    string

	buildMu sync.Mutex
}

// NewBuilder creates a builder for the given store and collaborators
func NewBuilder(store *Store, snapshot *Snapshot, corpus repository.CorpusRepository, embeddings Embeddings, versionTag, modelID string) *Builder {
	return &Builder{
		store:      store,
		snapshot:   snapshot,
		corpus:     corpus,
		embeddings: embeddings,
		versionTag: versionTag,
		modelID:    modelID,
	}
}

// BuildEmbeddingText creates the text to embed for a verse. The source and
// mood tags are folded in so provenance and mood context influence
// similarity, not just the verse body.
func BuildEmbeddingText(v models.VerseRecord) string {
	return strings.TrimSpace(v.Text + " " + v.Source + " " + strings.Join(v.MoodTags, " "))
}

// EnsureReady establishes the index at startup: load the snapshot if it is
// compatible with the current version tag and model, otherwise rebuild from
// the corpus. Without an embedding backend the index stays empty and
// retrieval serves from the fallback path.
func (b *Builder) EnsureReady(ctx context.Context) error {
	if !b.embeddings.Available() {
		log.Println("Embedding backend unavailable; semantic index disabled")
		return nil
	}

	b.buildMu.Lock()
	defer b.buildMu.Unlock()

	entries, version, err := b.snapshot.Load()
	if err == nil {
		if b.snapshot.Compatible(version, b.versionTag, b.modelID) {
			b.store.ReplaceAll(entries, version)
			log.Printf("Loaded %d verse embeddings from disk", len(entries))
			return nil
		}
		log.Printf("Index snapshot is stale (version %q model %q); rebuilding", version.Version, version.Model)
	}

	return b.build(ctx)
}

// Build performs a full rebuild from the corpus and persists the result.
func (b *Builder) Build(ctx context.Context) error {
	b.buildMu.Lock()
	defer b.buildMu.Unlock()
	return b.build(ctx)
}

// Upsert re-reads one verse from the corpus, re-embeds it and re-persists
// the whole snapshot. Corpus mutation is rare; rewriting the snapshot keeps
// the artifacts trivially consistent.
func (b *Builder) Upsert(ctx context.Context, verseID string) error {
	b.buildMu.Lock()
	defer b.buildMu.Unlock()

	verse, err := b.corpus.Get(ctx, verseID)
	if err != nil {
		return err
	}

	vector, err := b.embeddings.EmbedVerse(ctx, BuildEmbeddingText(*verse))
	if err != nil {
		return fmt.Errorf("embed verse %s: %w", verseID, err)
	}

	// buildMu is the only writer, so the count computed here cannot go
	// stale before the write below.
	count := b.store.Len()
	if _, exists := b.store.Get(verse.VerseID); !exists {
		count++
	}
	version := b.newVersion(count)

	b.store.SetWithVersion(models.EmbeddingEntry{
		VerseID:  verse.VerseID,
		Vector:   vector,
		Text:     verse.Text,
		Source:   verse.Source,
		MoodTags: verse.MoodTags,
	}, version)

	if err := b.snapshot.Save(b.store.Snapshot(), version); err != nil {
		return fmt.Errorf("persist index after upsert: %w", err)
	}
	return nil
}

// Regenerate clears the persisted artifacts and rebuilds from scratch.
// Used when an operator wants to force recomputation regardless of version
// compatibility, e.g. after an encoder model change.
func (b *Builder) Regenerate(ctx context.Context) error {
	b.buildMu.Lock()
	defer b.buildMu.Unlock()

	if err := b.snapshot.Clear(); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return b.build(ctx)
}

// build assumes buildMu is held. The replacement map is assembled off to
// the side and swapped in only when complete; on cancellation the partial
// map is discarded and the last persisted snapshot stays authoritative.
func (b *Builder) build(ctx context.Context) error {
	verses, err := b.corpus.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list corpus: %w", err)
	}

	log.Printf("Computing embeddings for %d verses...", len(verses))

	entries := make(map[string]models.EmbeddingEntry, len(verses))
	for i, verse := range verses {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("index build interrupted: %w", err)
		}

		vector, err := b.embeddings.EmbedVerse(ctx, BuildEmbeddingText(verse))
		if err != nil {
			log.Printf("Skipping verse %s: %v", verse.VerseID, err)
			continue
		}

		entries[verse.VerseID] = models.EmbeddingEntry{
			VerseID:  verse.VerseID,
			Vector:   vector,
			Text:     verse.Text,
			Source:   verse.Source,
			MoodTags: verse.MoodTags,
		}

		if i > 0 && i%100 == 0 {
			log.Printf("  Processed %d/%d verses...", i, len(verses))
		}
	}

	version := b.newVersion(len(entries))
	b.store.ReplaceAll(entries, version)

	if err := b.snapshot.Save(entries, version); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	log.Printf("Indexed %d verse embeddings", len(entries))
	return nil
}

func (b *Builder) newVersion(count int) models.IndexVersion {
	return models.IndexVersion{
		Version:     b.versionTag,
		TotalVerses: count,
		CreatedAt:   time.Now().UTC(),
		Model:       b.modelID,
	}
}
