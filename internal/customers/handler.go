package customers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salespulse/salespulse/internal/platform/httpx"
	"github.com/salespulse/salespulse/internal/shared"
)

// MetricsService is the data contract used by the handler.
type MetricsService interface {
	LifecycleComposition(ctx context.Context, f shared.Filter) ([]MonthComposition, error)
	HeroMetrics(ctx context.Context, f shared.Filter) (HeroMetrics, error)
	TopCustomers(ctx context.Context, f shared.Filter, limit int) ([]TopCustomer, error)
}

// Handler serves the customer metric endpoints.
type Handler struct {
	logger  *slog.Logger
	service MetricsService
}

// NewHandler constructs the customers HTTP handler.
func NewHandler(logger *slog.Logger, service MetricsService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the customer metric routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/lifecycle", h.handleLifecycle)
	r.Get("/hero", h.handleHero)
	r.Get("/top", h.handleTop)
}

func (h *Handler) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	months, err := h.service.LifecycleComposition(r.Context(), f)
	if err != nil {
		h.logError("load lifecycle composition", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if months == nil {
		months = []MonthComposition{}
	}
	httpx.OK(w, months)
}

func (h *Handler) handleHero(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	metrics, err := h.service.HeroMetrics(r.Context(), f)
	if err != nil {
		h.logError("load hero metrics", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, metrics)
}

func (h *Handler) handleTop(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	rows, err := h.service.TopCustomers(r.Context(), f, limit)
	if err != nil {
		h.logError("load top customers", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if rows == nil {
		rows = []TopCustomer{}
	}
	httpx.OK(w, rows)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
