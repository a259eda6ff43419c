package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_media/internal/engine"
)

const (
	msgMissingQuery = "Missing query parameter q"
	msgServerError  = "Server error"
)

// Searcher runs one aggregation. *engine.Aggregator satisfies it.
type Searcher interface {
	Aggregate(ctx context.Context, query string) (engine.SearchOutput, error)
}

// ErrorResponse is the JSON body of every non-200 API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler holds HTTP request handlers
type Handler struct {
	searcher Searcher
}

// NewHandler creates a new handler instance
func NewHandler(searcher Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// Search handles GET /api/search?q=
func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingQuery})
		return
	}

	out, err := h.searcher.Aggregate(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingQuery})
			return
		}
		slog.Error("search failed", slog.String("query", query), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgServerError, Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, out)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Metrics returns engine counters as plain text.
func (h *Handler) Metrics(c *gin.Context) {
	c.String(http.StatusOK, engine.FormatMetrics())
}
