package funnel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salespulse/salespulse/internal/platform/httpx"
	"github.com/salespulse/salespulse/internal/shared"
)

// WaterfallService is the data contract used by the handler.
type WaterfallService interface {
	Waterfall(ctx context.Context, f shared.Filter) ([]WaterfallStage, error)
	NewDeals(ctx context.Context, f shared.Filter) ([]NewDealsMonth, error)
}

// Handler serves the funnel endpoints.
type Handler struct {
	logger  *slog.Logger
	service WaterfallService
}

// NewHandler constructs the funnel HTTP handler.
func NewHandler(logger *slog.Logger, service WaterfallService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the funnel routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleWaterfall)
	r.Get("/new-deals", h.handleNewDeals)
}

func (h *Handler) handleWaterfall(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	stages, err := h.service.Waterfall(r.Context(), f)
	if err != nil {
		h.logError("load funnel waterfall", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, stages)
}

func (h *Handler) handleNewDeals(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	months, err := h.service.NewDeals(r.Context(), f)
	if err != nil {
		h.logError("load new deals", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, months)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
