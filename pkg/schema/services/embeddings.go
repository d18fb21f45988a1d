package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/verse-companion-api/pkg/schema/config"
)

// EmbeddingsService handles text embedding operations using a pluggable
// backend. The backend may be absent: a provider of "none", or a backend
// that fails to initialize, leaves the service unavailable and callers are
// expected to branch on Available() rather than discover failure through Embed calls.
type EmbeddingsService struct {
	embedder Embedder
}

var (
	embeddingsService *EmbeddingsService
	embeddingsOnce    sync.Once
)

// GetEmbeddingsService returns the singleton embeddings service
func GetEmbeddingsService() *EmbeddingsService {
	embeddingsOnce.Do(func() {
		cfg := config.GetConfig()
		ctx := context.Background()

		var embedder Embedder
		switch cfg.EmbeddingProvider {
		case "vertex":
			vertexEmbedder, err := NewVertexEmbedder(ctx, cfg)
			if err != nil {
				log.Printf("Embeddings unavailable: %v", err)
			} else {
				embedder = vertexEmbedder
			}
		case "custom":
			embedder = NewCustomEmbedder(cfg)
		case "none":
			log.Println("Embeddings disabled (EMBEDDING_PROVIDER=none)")
		default:
			embedder = NewOllamaEmbedder(cfg)
		}

		embeddingsService = &EmbeddingsService{
			embedder: embedder,
		}
	})
	return embeddingsService
}

// Available reports whether an embedding backend is configured and usable
func (s *EmbeddingsService) Available() bool {
	return s.embedder != nil
}

// Healthy reports whether the configured backend is currently reachable.
// Backends without a liveness check are assumed healthy while configured.
func (s *EmbeddingsService) Healthy(ctx context.Context) bool {
	if s.embedder == nil {
		return false
	}
	if hc, ok := s.embedder.(interface{ IsHealthy(context.Context) bool }); ok {
		return hc.IsHealthy(ctx)
	}
	return true
}

// EmbedQuery embeds a query for retrieval
func (s *EmbeddingsService) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedding backend available")
	}
	return s.embedder.Embed(ctx, query, TaskTypeQuery)
}

// EmbedVerse embeds a verse as a document for retrieval
func (s *EmbeddingsService) EmbedVerse(ctx context.Context, text string) ([]float64, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedding backend available")
	}
	return s.embedder.Embed(ctx, text, TaskTypeDocument)
}

// Close releases backend resources, if the backend holds any
func (s *EmbeddingsService) Close() error {
	if closer, ok := s.embedder.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
