package export

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salespulse/salespulse/internal/leaderboard"
	"github.com/salespulse/salespulse/internal/overview"
	"github.com/salespulse/salespulse/internal/platform/httpx"
	"github.com/salespulse/salespulse/internal/shared"
)

// SummaryService provides the overview section of the download.
type SummaryService interface {
	GetOverview(ctx context.Context, f shared.Filter) (overview.Summary, error)
}

// BoardService provides the leaderboard section of the download.
type BoardService interface {
	GetLeaderboard(ctx context.Context, f shared.Filter, srt leaderboard.Sort) ([]leaderboard.Row, error)
}

// Handler serves the dashboard CSV download.
type Handler struct {
	logger  *slog.Logger
	summary SummaryService
	board   BoardService
}

// NewHandler constructs the export HTTP handler.
func NewHandler(logger *slog.Logger, summary SummaryService, board BoardService) *Handler {
	return &Handler{logger: logger, summary: summary, board: board}
}

// MountRoutes registers the export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard.csv", h.handleDashboardCSV)
}

func (h *Handler) handleDashboardCSV(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseFilter(r)
	ctx := r.Context()

	summary, err := h.summary.GetOverview(ctx, f)
	if err != nil {
		h.logError("load overview for export", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}
	rows, err := h.board.GetLeaderboard(ctx, f, leaderboard.DefaultSort())
	if err != nil {
		h.logError("load leaderboard for export", err)
		httpx.Fail(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.csv"`)
	if err := WriteDashboardCSV(w, summary, rows); err != nil {
		h.logError("write dashboard csv", err)
	}
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
