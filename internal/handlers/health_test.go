package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthContext(t *testing.T, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(&fakeCorpus{}, &fakeEmbeddings{})
	c, rec := newHealthContext(t, "/health")

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEmbeddingsHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		embeddings *fakeEmbeddings
		wantCode   int
	}{
		{"backend healthy", &fakeEmbeddings{available: true, healthy: true}, http.StatusOK},
		{"backend unreachable", &fakeEmbeddings{available: true, healthy: false}, http.StatusServiceUnavailable},
		{"not configured", &fakeEmbeddings{available: false}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&fakeCorpus{}, tt.embeddings)
			c, rec := newHealthContext(t, "/health/embeddings")

			require.NoError(t, h.EmbeddingsHealthCheck(c))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
