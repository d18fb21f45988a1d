package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/verse-companion-api/internal/models"
	"github.com/verse-companion-api/internal/services"
)

// RecommendHandler handles verse recommendation endpoints
type RecommendHandler struct {
	retrieval *services.RetrievalService
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(retrieval *services.RetrievalService) *RecommendHandler {
	return &RecommendHandler{
		retrieval: retrieval,
	}
}

// Recommend handles POST /recommend - semantic verse recommendation
func (h *RecommendHandler) Recommend(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RecommendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query is required")
	}

	k := req.K
	if k <= 0 {
		k = 1
	}
	if k > 50 {
		k = 50
	}

	results := h.retrieval.FindRelevantVerses(ctx, req.Query, req.Mood, req.ExcludeIDs, k)

	return c.JSON(http.StatusOK, models.RecommendResponse{
		Query:   req.Query,
		Results: results,
	})
}

// RegisterRoutes registers recommendation routes
func (h *RecommendHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/recommend", h.Recommend)
}
