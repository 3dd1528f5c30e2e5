package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/salespulse/salespulse/internal/jobs"
	"github.com/salespulse/salespulse/internal/leaderboard"
	"github.com/salespulse/salespulse/internal/overview"
	"github.com/salespulse/salespulse/internal/roster"
	"github.com/salespulse/salespulse/internal/shared"
	"github.com/salespulse/salespulse/internal/team"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OverviewWarmer loads the overview aggregation for a filter.
type OverviewWarmer interface {
	GetOverview(ctx context.Context, f shared.Filter) (overview.Summary, error)
}

// BoardWarmer loads the leaderboard for a filter.
type BoardWarmer interface {
	GetLeaderboard(ctx context.Context, f shared.Filter, srt leaderboard.Sort) ([]leaderboard.Row, error)
}

// TeamWarmer loads both team rollup variants for a filter.
type TeamWarmer interface {
	Rollups(ctx context.Context, f shared.Filter) ([]team.Rollup, error)
	TrendRollups(ctx context.Context, f shared.Filter) ([]team.TrendRollup, error)
}

// ManagerLister enumerates the manager scopes to warm.
type ManagerLister interface {
	Managers(ctx context.Context) ([]roster.Manager, error)
}

// DashboardWarmupJob pre-populates the aggregation cache for the unfiltered
// view and each manager scope so the first dashboard load after an
// invalidation stays fast.
type DashboardWarmupJob struct {
	Overview OverviewWarmer
	Board    BoardWarmer
	Teams    TeamWarmer
	Roster   ManagerLister
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(ov OverviewWarmer, board BoardWarmer, teams TeamWarmer, rosterSvc ManagerLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Overview: ov, Board: board, Teams: teams, Roster: rosterSvc, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("run_id", payload.RunID))
	logger.Info("starting dashboard warmup")
	start := time.Now()

	filters, err := j.warmupFilters(ctx, payload.Scope)
	if err != nil {
		resultErr = err
		logger.Error("resolve warmup scopes", slog.Any("error", err))
		return resultErr
	}

	warmed := 0
	for _, f := range filters {
		if err := j.warmFilter(ctx, f); err != nil {
			resultErr = err
			logger.Error("warm filter", slog.String("filter", f.CacheToken()), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed dashboard warmup", slog.Int("scopes", warmed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *DashboardWarmupJob) warmupFilters(ctx context.Context, scope string) ([]shared.Filter, error) {
	filters := []shared.Filter{{}}
	if scope != "" && scope != "all" {
		return filters, nil
	}
	if j.Roster == nil {
		return filters, nil
	}
	managers, err := j.Roster.Managers(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range managers {
		id := m.ID
		filters = append(filters, shared.Filter{SalesManagerID: &id})
	}
	return filters, nil
}

func (j *DashboardWarmupJob) warmFilter(ctx context.Context, f shared.Filter) error {
	// Each filter gets its own timeout so one slow scope cannot stall the run.
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if j.Overview != nil {
		if _, err := j.Overview.GetOverview(scopeCtx, f); err != nil {
			return err
		}
	}
	if j.Board != nil {
		if _, err := j.Board.GetLeaderboard(scopeCtx, f, leaderboard.DefaultSort()); err != nil {
			return err
		}
	}
	if j.Teams != nil {
		if _, err := j.Teams.Rollups(scopeCtx, f); err != nil {
			return err
		}
		if _, err := j.Teams.TrendRollups(scopeCtx, f); err != nil {
			return err
		}
	}
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
