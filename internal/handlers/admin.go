package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/verse-companion-api/internal/index"
	"github.com/verse-companion-api/internal/models"
	"github.com/verse-companion-api/internal/repository"
	"github.com/verse-companion-api/internal/services"
)

// AdminHandler handles index administration endpoints
type AdminHandler struct {
	builder   *index.Builder
	retrieval *services.RetrievalService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(builder *index.Builder, retrieval *services.RetrievalService) *AdminHandler {
	return &AdminHandler{
		builder:   builder,
		retrieval: retrieval,
	}
}

// Upsert handles POST /index/upsert - re-embed a single verse
func (h *AdminHandler) Upsert(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.VerseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "verse_id is required")
	}

	if err := h.builder.Upsert(ctx, req.VerseID); err != nil {
		if errors.Is(err, repository.ErrVerseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Verse not found in corpus")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Upsert failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, h.retrieval.IndexStatus())
}

// Regenerate handles POST /index/regenerate - force a full rebuild
func (h *AdminHandler) Regenerate(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.builder.Regenerate(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Regenerate failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, h.retrieval.IndexStatus())
}

// Status handles GET /index/status - operational visibility
func (h *AdminHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.retrieval.IndexStatus())
}

// RegisterRoutes registers index administration routes
func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/index/upsert", h.Upsert)
	g.POST("/index/regenerate", h.Regenerate)
	g.GET("/index/status", h.Status)
}
