package leaderboard

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/salespulse/salespulse/internal/platform/httpx"
	"github.com/salespulse/salespulse/internal/shared"
)

var sortValidate = validator.New(validator.WithRequiredStructEnabled())

type sortQuery struct {
	SortBy string `validate:"omitempty,oneof=rep_id name revenue target target_percentage total_deals closed_won_deals conversion_rate avg_deal_size high_risk_deals risk_ratio performance_score"`
	Order  string `validate:"omitempty,oneof=asc desc"`
}

// BoardService is the data contract used by the handler.
type BoardService interface {
	GetLeaderboard(ctx context.Context, f shared.Filter, srt Sort) ([]Row, error)
}

// Handler serves the leaderboard endpoint.
type Handler struct {
	logger  *slog.Logger
	service BoardService
}

// NewHandler constructs the leaderboard HTTP handler.
func NewHandler(logger *slog.Logger, service BoardService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the leaderboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleLeaderboard)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	srt := parseSort(r)

	rows, err := h.service.GetLeaderboard(r.Context(), f, srt)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("load leaderboard", slog.Any("error", err))
		}
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if rows == nil {
		rows = []Row{}
	}
	httpx.OK(w, rows)
}

// parseSort reads sort_by/order; anything the validator rejects falls back
// to the default ranking rather than erroring.
func parseSort(r *http.Request) Sort {
	q := sortQuery{
		SortBy: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sort_by"))),
		Order:  strings.ToLower(strings.TrimSpace(r.URL.Query().Get("order"))),
	}
	if err := sortValidate.Struct(q); err != nil {
		return DefaultSort()
	}
	srt := DefaultSort()
	if q.SortBy != "" {
		srt.Key = q.SortBy
	}
	if q.Order != "" {
		srt.Order = q.Order
	}
	return srt
}
