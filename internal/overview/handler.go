package overview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salespulse/salespulse/internal/platform/httpx"
	"github.com/salespulse/salespulse/internal/shared"
)

// SummaryService is the data contract used by the handler.
type SummaryService interface {
	GetOverview(ctx context.Context, f shared.Filter) (Summary, error)
}

// Handler serves the overview endpoint.
type Handler struct {
	logger  *slog.Logger
	service SummaryService
}

// NewHandler constructs the overview HTTP handler.
func NewHandler(logger *slog.Logger, service SummaryService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the overview routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleOverview)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	summary, err := h.service.GetOverview(r.Context(), f)
	if err != nil {
		h.logError("load overview", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, summary)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
