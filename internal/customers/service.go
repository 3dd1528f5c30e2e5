package customers

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salespulse/salespulse/internal/platform/cache"
	"github.com/salespulse/salespulse/internal/shared"
)

// DefaultTopLimit bounds the top-customers table when no limit is supplied.
const DefaultTopLimit = 10

// MaxTopLimit is the hard cap for the limit parameter.
const MaxTopLimit = 50

// Reader exposes the repository queries the service relies on.
type Reader interface {
	StageHistory(ctx context.Context, start, end *time.Time, repIDs []int64) ([]StageMonthRow, error)
	CustomerCounts(ctx context.Context, repIDs []int64) (total, atRisk int64, err error)
	CustomersWithDecisionMaker(ctx context.Context, repIDs []int64) (int64, error)
	HealthEngagementScore(ctx context.Context, repIDs []int64) (float64, error)
	RevenueSplit(ctx context.Context, start, end *time.Time, repIDs []int64) (repeat, total float64, err error)
	TopCustomers(ctx context.Context, start, end *time.Time, repIDs []int64, limit int) ([]TopCustomer, error)
}

// RosterService resolves manager filters into rep scopes.
type RosterService interface {
	ResolveScope(ctx context.Context, f shared.Filter) (shared.RepScope, error)
}

// Service computes customer metrics with cache-aware lookups.
type Service struct {
	repo   Reader
	roster RosterService
	cache  *cache.Versioned
}

// NewService wires the repository, roster resolution and cache helper.
func NewService(repo Reader, rosterSvc RosterService, c *cache.Versioned) *Service {
	return &Service{repo: repo, roster: rosterSvc, cache: c}
}

// LifecycleComposition builds the month-ordered stacked-chart series.
func (s *Service) LifecycleComposition(ctx context.Context, f shared.Filter) ([]MonthComposition, error) {
	loader := func(ctx context.Context) (any, error) {
		scope, err := s.roster.ResolveScope(ctx, f)
		if err != nil {
			return nil, err
		}
		if scope.Empty() {
			return []MonthComposition{}, nil
		}
		rows, err := s.repo.StageHistory(ctx, f.StartDate, f.EndDate, scope.Param())
		if err != nil {
			return nil, err
		}
		return composeMonths(rows), nil
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]MonthComposition), nil
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "lifecycle", f.CacheToken())
	if err != nil {
		return nil, err
	}
	var months []MonthComposition
	if err := s.cache.FetchJSON(ctx, key, &months, loader); err != nil {
		return nil, err
	}
	return months, nil
}

// HeroMetrics resolves the four-rate card. Every rate defaults to 0 when its
// denominator is 0.
func (s *Service) HeroMetrics(ctx context.Context, f shared.Filter) (HeroMetrics, error) {
	loader := func(ctx context.Context) (any, error) {
		scope, err := s.roster.ResolveScope(ctx, f)
		if err != nil {
			return nil, err
		}
		if scope.Empty() {
			return HeroMetrics{}, nil
		}

		var (
			total, atRisk, withDM int64
			health                float64
			repeat, totalRevenue  float64
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			total, atRisk, err = s.repo.CustomerCounts(gctx, scope.Param())
			return err
		})
		g.Go(func() error {
			var err error
			withDM, err = s.repo.CustomersWithDecisionMaker(gctx, scope.Param())
			return err
		})
		g.Go(func() error {
			var err error
			health, err = s.repo.HealthEngagementScore(gctx, scope.Param())
			return err
		})
		g.Go(func() error {
			var err error
			repeat, totalRevenue, err = s.repo.RevenueSplit(gctx, f.StartDate, f.EndDate, scope.Param())
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		return HeroMetrics{
			AtRiskRate:            rate(float64(atRisk), float64(total)),
			CustomersWithDmRate:   rate(float64(withDM), float64(total)),
			HealthEngagementScore: health,
			RepeatRevenueRate:     rate(repeat, totalRevenue),
		}, nil
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return HeroMetrics{}, err
		}
		return value.(HeroMetrics), nil
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "hero", f.CacheToken())
	if err != nil {
		return HeroMetrics{}, err
	}
	var metrics HeroMetrics
	if err := s.cache.FetchJSON(ctx, key, &metrics, loader); err != nil {
		return HeroMetrics{}, err
	}
	return metrics, nil
}

// TopCustomers ranks scoped customers by filtered revenue.
func (s *Service) TopCustomers(ctx context.Context, f shared.Filter, limit int) ([]TopCustomer, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}
	scope, err := s.roster.ResolveScope(ctx, f)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return []TopCustomer{}, nil
	}
	rows, err := s.repo.TopCustomers(ctx, f.StartDate, f.EndDate, scope.Param(), limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []TopCustomer{}
	}
	return rows, nil
}

func rate(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator * 100
}

// composeMonths groups raw stage rows into the month-ordered composition
// with the fixed stage display order.
func composeMonths(rows []StageMonthRow) []MonthComposition {
	type monthAgg struct {
		total  int
		stages map[string]StageSlice
	}
	byMonth := make(map[string]*monthAgg)
	for _, row := range rows {
		key := shared.MonthKey(row.Month)
		agg := byMonth[key]
		if agg == nil {
			agg = &monthAgg{stages: make(map[string]StageSlice)}
			byMonth[key] = agg
		}
		slice := agg.stages[row.Stage]
		slice.Stage = row.Stage
		slice.CustomerCount += row.CustomerCount
		slice.TotalRevenue += row.Revenue
		agg.stages[row.Stage] = slice
		agg.total += row.CustomerCount
	}

	months := make([]string, 0, len(byMonth))
	for key := range byMonth {
		months = append(months, key)
	}
	sort.Strings(months)

	out := make([]MonthComposition, 0, len(months))
	for _, key := range months {
		agg := byMonth[key]
		names := make([]string, 0, len(agg.stages))
		for name := range agg.stages {
			names = append(names, name)
		}
		orderStages(names)

		mc := MonthComposition{Month: key, Stages: make([]StageSlice, 0, len(names))}
		for _, name := range names {
			slice := agg.stages[name]
			if agg.total > 0 {
				slice.Percentage = float64(slice.CustomerCount) / float64(agg.total) * 100
			}
			mc.Stages = append(mc.Stages, slice)
		}
		out = append(out, mc)
	}
	return out
}
