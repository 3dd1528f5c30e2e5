package team

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salespulse/salespulse/internal/platform/httpx"
	"github.com/salespulse/salespulse/internal/shared"
)

// RollupService is the data contract used by the handler.
type RollupService interface {
	Rollups(ctx context.Context, f shared.Filter) ([]Rollup, error)
	TrendRollups(ctx context.Context, f shared.Filter) ([]TrendRollup, error)
}

// Handler serves both team rollup endpoints.
type Handler struct {
	logger  *slog.Logger
	service RollupService
}

// NewHandler constructs the team HTTP handler.
func NewHandler(logger *slog.Logger, service RollupService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the rollup routes. The two variants stay on separate
// routes because their consumers depend on different shapes and thresholds.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleRollups)
	r.Get("/trend", h.handleTrendRollups)
}

func (h *Handler) handleRollups(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	rollups, err := h.service.Rollups(r.Context(), f)
	if err != nil {
		h.logError("load team rollups", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if rollups == nil {
		rollups = []Rollup{}
	}
	httpx.OK(w, rollups)
}

func (h *Handler) handleTrendRollups(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	rollups, err := h.service.TrendRollups(r.Context(), f)
	if err != nil {
		h.logError("load team trend rollups", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if rollups == nil {
		rollups = []TrendRollup{}
	}
	httpx.OK(w, rollups)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
