package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/autoflow/autoflow/internal/model"
)

// StatsProvider returns the landing page counters.
type StatsProvider interface {
	Get(ctx context.Context) (*model.Stats, error)
}

// StatsHandler serves the public counters.
type StatsHandler struct {
	stats  StatsProvider
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats StatsProvider, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: loggerOrDiscard(logger).With("component", "stats_handler"),
	}
}

// Stats handles GET /stats
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Get(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
