package funnel

import (
	"context"
	"time"

	"github.com/salespulse/salespulse/internal/platform/cache"
	"github.com/salespulse/salespulse/internal/shared"
)

// Reader exposes the repository queries the service relies on.
type Reader interface {
	SeedDealIDs(ctx context.Context, start, end *time.Time, repIDs []int64) ([]int64, error)
	HistoryForDeals(ctx context.Context, dealIDs []int64) ([]HistoryRow, error)
	NewDealsByMonth(ctx context.Context, start, end *time.Time, repIDs []int64) ([]NewDealsMonth, error)
}

// RosterService resolves manager filters into rep scopes.
type RosterService interface {
	ResolveScope(ctx context.Context, f shared.Filter) (shared.RepScope, error)
}

// Service computes the waterfall and the new-deals table.
type Service struct {
	repo   Reader
	roster RosterService
	cache  *cache.Versioned
}

// NewService wires the repository, roster resolution and cache helper.
func NewService(repo Reader, rosterSvc RosterService, c *cache.Versioned) *Service {
	return &Service{repo: repo, roster: rosterSvc, cache: c}
}

// Waterfall returns the six fixed stages with cumulative-reached counts. The
// date and manager filters select which deals seed the funnel; once seeded, a
// deal's whole history counts, even rows outside the window.
func (s *Service) Waterfall(ctx context.Context, f shared.Filter) ([]WaterfallStage, error) {
	loader := func(ctx context.Context) (any, error) {
		return s.loadWaterfall(ctx, f)
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]WaterfallStage), nil
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "funnel", f.CacheToken())
	if err != nil {
		return nil, err
	}
	var stages []WaterfallStage
	if err := s.cache.FetchJSON(ctx, key, &stages, loader); err != nil {
		return nil, err
	}
	return stages, nil
}

func (s *Service) loadWaterfall(ctx context.Context, f shared.Filter) ([]WaterfallStage, error) {
	scope, err := s.roster.ResolveScope(ctx, f)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return emptyWaterfall(), nil
	}
	seeds, err := s.repo.SeedDealIDs(ctx, f.StartDate, f.EndDate, scope.Param())
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return emptyWaterfall(), nil
	}
	history, err := s.repo.HistoryForDeals(ctx, seeds)
	if err != nil {
		return nil, err
	}
	return buildWaterfall(seeds, history), nil
}

// dealProgress tracks how far one deal travelled through the funnel and its
// most recent recorded value.
type dealProgress struct {
	maxRank    int
	terminal   string
	latestAt   time.Time
	latestVal  float64
	terminalAt time.Time
}

func buildWaterfall(seeds []int64, history []HistoryRow) []WaterfallStage {
	progress := make(map[int64]*dealProgress, len(seeds))
	for _, id := range seeds {
		progress[id] = &dealProgress{maxRank: -1}
	}
	for _, row := range history {
		p, ok := progress[row.DealID]
		if !ok {
			continue
		}
		rank := stageRank(row.Stage)
		if rank > p.maxRank {
			p.maxRank = rank
		}
		// Repository order breaks activity-date ties, so >= keeps the later row.
		if p.latestAt.IsZero() || !row.ActivityDate.Before(p.latestAt) {
			p.latestAt = row.ActivityDate
			p.latestVal = row.Value
		}
		if rank == terminalRank && !row.ActivityDate.Before(p.terminalAt) {
			p.terminal = normalizeStage(row.Stage)
			p.terminalAt = row.ActivityDate
		}
	}

	counts := make(map[string]int, len(allStages))
	values := make(map[string]float64, len(allStages))
	for _, p := range progress {
		if p.maxRank < 0 {
			continue
		}
		linear := p.maxRank
		if linear > len(linearStages)-1 {
			linear = len(linearStages) - 1
		}
		for i := 0; i <= linear; i++ {
			counts[linearStages[i]]++
			values[linearStages[i]] += p.latestVal
		}
		if p.terminal != "" {
			counts[p.terminal]++
			values[p.terminal] += p.latestVal
		}
	}

	out := make([]WaterfallStage, 0, len(allStages))
	for _, stage := range allStages {
		out = append(out, WaterfallStage{Stage: stage, Count: counts[stage], Value: values[stage]})
	}
	return out
}

func emptyWaterfall() []WaterfallStage {
	out := make([]WaterfallStage, 0, len(allStages))
	for _, stage := range allStages {
		out = append(out, WaterfallStage{Stage: stage})
	}
	return out
}

// NewDeals returns the per-month counts of newly opened deals within scope.
func (s *Service) NewDeals(ctx context.Context, f shared.Filter) ([]NewDealsMonth, error) {
	loader := func(ctx context.Context) (any, error) {
		scope, err := s.roster.ResolveScope(ctx, f)
		if err != nil {
			return nil, err
		}
		if scope.Empty() {
			return []NewDealsMonth{}, nil
		}
		months, err := s.repo.NewDealsByMonth(ctx, f.StartDate, f.EndDate, scope.Param())
		if err != nil {
			return nil, err
		}
		if months == nil {
			months = []NewDealsMonth{}
		}
		return months, nil
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]NewDealsMonth), nil
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "new_deals", f.CacheToken())
	if err != nil {
		return nil, err
	}
	var months []NewDealsMonth
	if err := s.cache.FetchJSON(ctx, key, &months, loader); err != nil {
		return nil, err
	}
	return months, nil
}
