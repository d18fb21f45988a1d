package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/verse-companion-api/internal/repository"
)

// EmbeddingsHealth is what the health endpoints need from the embeddings
// layer.
type EmbeddingsHealth interface {
	Available() bool
	Healthy(ctx context.Context) bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	corpus     repository.CorpusRepository
	embeddings EmbeddingsHealth
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(corpus repository.CorpusRepository, embeddings EmbeddingsHealth) *HealthHandler {
	return &HealthHandler{
		corpus:     corpus,
		embeddings: embeddings,
	}
}

// HealthResponse is the response for basic health check
type HealthResponse struct {
	Status string `json:"status"`
}

// DatabaseHealthResponse is the response for corpus health check
type DatabaseHealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// CorpusHealth handles GET /health/db
func (h *HealthHandler) CorpusHealth(c echo.Context) error {
	if err := h.corpus.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, DatabaseHealthResponse{
		Status:   "connected",
		Database: "corpus",
	})
}

// EmbeddingsHealthCheck handles GET /health/embeddings
func (h *HealthHandler) EmbeddingsHealthCheck(c echo.Context) error {
	if !h.embeddings.Available() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_configured",
			"error":  "no embedding backend configured",
		})
	}

	if !h.embeddings.Healthy(c.Request().Context()) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  "embedding backend unreachable",
		})
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/health/db", h.CorpusHealth)
	g.GET("/health/embeddings", h.EmbeddingsHealthCheck)
}
