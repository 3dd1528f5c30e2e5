package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup precomputes dashboard aggregations into the cache.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskCacheBump invalidates every cached aggregation after ingestion.
	TaskCacheBump = "cache:bump"
)

// DashboardWarmupPayload parameterises a warmup run.
type DashboardWarmupPayload struct {
	RunID string `json:"runId"`
	// Scope selects which filters to warm; "all" covers the unfiltered view
	// plus every manager.
	Scope string `json:"scope"`
}

// NewDashboardWarmupTask constructs a warmup task with a fresh run id.
func NewDashboardWarmupTask(scope string) (*asynq.Task, error) {
	if scope == "" {
		scope = "all"
	}
	data, err := json.Marshal(DashboardWarmupPayload{RunID: uuid.NewString(), Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// CacheBumpPayload identifies the ingestion run that triggered invalidation.
type CacheBumpPayload struct {
	RunID  string `json:"runId"`
	Source string `json:"source"`
}

// NewCacheBumpTask constructs a cache invalidation task.
func NewCacheBumpTask(source string) (*asynq.Task, error) {
	data, err := json.Marshal(CacheBumpPayload{RunID: uuid.NewString(), Source: source})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheBump, data), nil
}
