package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/salespulse/salespulse/internal/customers"
	"github.com/salespulse/salespulse/internal/export"
	"github.com/salespulse/salespulse/internal/funnel"
	"github.com/salespulse/salespulse/internal/leaderboard"
	"github.com/salespulse/salespulse/internal/observability"
	"github.com/salespulse/salespulse/internal/overview"
	"github.com/salespulse/salespulse/internal/team"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	OverviewHandler    *overview.Handler
	LeaderboardHandler *leaderboard.Handler
	TeamHandler        *team.Handler
	CustomersHandler   *customers.Handler
	FunnelHandler      *funnel.Handler
	ExportHandler      *export.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with the dashboard routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.OverviewHandler != nil {
			api.Route("/overview", params.OverviewHandler.MountRoutes)
		}
		if params.LeaderboardHandler != nil {
			api.Route("/leaderboard", params.LeaderboardHandler.MountRoutes)
		}
		if params.TeamHandler != nil {
			api.Route("/teams", params.TeamHandler.MountRoutes)
		}
		if params.CustomersHandler != nil {
			api.Route("/customers", params.CustomersHandler.MountRoutes)
		}
		if params.FunnelHandler != nil {
			api.Route("/funnel", params.FunnelHandler.MountRoutes)
		}
		if params.ExportHandler != nil {
			api.Route("/export", params.ExportHandler.MountRoutes)
		}
	})

	return r
}
