package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/salespulse/salespulse/internal/jobs"
	"github.com/salespulse/salespulse/internal/platform/cache"
)

// CacheBumpJob increments the cache version after an ingestion run so every
// dashboard aggregation recomputes on next read.
type CacheBumpJob struct {
	Cache   *cache.Versioned
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCacheBumpJob wires dependencies for the invalidation handler.
func NewCacheBumpJob(c *cache.Versioned, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheBumpJob {
	return &CacheBumpJob{Cache: c, Logger: logger, Metrics: metrics}
}

// Handle processes cache bump tasks.
func (j *CacheBumpJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("cache bump: handler not configured")
	}
	var payload CacheBumpPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCacheBump)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Cache.Bump(ctx); err != nil {
		resultErr = err
		j.logger().Error("bump cache version", slog.String("run_id", payload.RunID), slog.Any("error", err))
		return resultErr
	}
	j.logger().Info("cache version bumped", slog.String("run_id", payload.RunID), slog.String("source", payload.Source))
	return resultErr
}

func (j *CacheBumpJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCacheBump))
	}
	return slog.Default().With(slog.String("job", TaskCacheBump))
}

func (j *CacheBumpJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
