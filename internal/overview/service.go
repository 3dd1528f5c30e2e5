package overview

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salespulse/salespulse/internal/platform/cache"
	"github.com/salespulse/salespulse/internal/roster"
	"github.com/salespulse/salespulse/internal/shared"
)

// Reader exposes the repository queries the service relies on.
type Reader interface {
	RevenueTotals(ctx context.Context, start, end *time.Time, repIDs []int64) (RevenueTotals, error)
	TargetTotal(ctx context.Context, start, end *time.Time, repIDs []int64) (float64, error)
	RepDealCounts(ctx context.Context, repIDs []int64, wonStages []string) ([]RepDealCounts, error)
}

// RosterService resolves manager filters and lists selectable managers.
type RosterService interface {
	Managers(ctx context.Context) ([]roster.Manager, error)
	ResolveScope(ctx context.Context, f shared.Filter) (shared.RepScope, error)
}

// Service computes the overview aggregation with cache-aware lookups.
type Service struct {
	repo   Reader
	roster RosterService
	cache  *cache.Versioned
}

// NewService wires the repository, roster resolution and cache helper.
func NewService(repo Reader, rosterSvc RosterService, c *cache.Versioned) *Service {
	return &Service{repo: repo, roster: rosterSvc, cache: c}
}

// GetOverview resolves the dashboard headline card for the filter.
func (s *Service) GetOverview(ctx context.Context, f shared.Filter) (Summary, error) {
	loader := func(ctx context.Context) (any, error) {
		return s.load(ctx, f)
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Summary{}, err
		}
		return value.(Summary), nil
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "overview", f.CacheToken())
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (s *Service) load(ctx context.Context, f shared.Filter) (Summary, error) {
	scope, err := s.roster.ResolveScope(ctx, f)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		managers, err := s.roster.Managers(gctx)
		if err != nil {
			return err
		}
		summary.Managers = managers
		return nil
	})

	// A manager with no direct reports yields zeroed metrics, not the
	// unfiltered aggregate.
	if !scope.Empty() {
		var (
			revenue RevenueTotals
			target  float64
			deals   []RepDealCounts
		)
		g.Go(func() error {
			var err error
			revenue, err = s.repo.RevenueTotals(gctx, f.StartDate, f.EndDate, scope.Param())
			return err
		})
		g.Go(func() error {
			var err error
			target, err = s.repo.TargetTotal(gctx, f.StartDate, f.EndDate, scope.Param())
			return err
		})
		g.Go(func() error {
			var err error
			deals, err = s.repo.RepDealCounts(gctx, scope.Param(), wonStageLiterals)
			return err
		})
		if err := g.Wait(); err != nil {
			return Summary{}, err
		}
		summary.TotalRevenue = revenue.Total
		summary.TotalTarget = target
		summary.CompletionPercentage = completion(revenue.Total, target)
		summary.AvgDealSize = avgRevenueEvent(revenue)
		summary.BestPerformer = bestPerformer(deals)
	} else if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	if summary.Managers == nil {
		summary.Managers = []roster.Manager{}
	}
	return summary, nil
}

func completion(revenue, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return revenue / target * 100
}

// avgRevenueEvent is the mean revenue per recorded revenue event, not a
// deal-value average.
func avgRevenueEvent(r RevenueTotals) float64 {
	if r.Events == 0 {
		return 0
	}
	return r.Total / float64(r.Events)
}

// bestPerformer picks the rep with the maximum conversion rate; ties resolve
// to the first rep in input order.
func bestPerformer(deals []RepDealCounts) *BestPerformer {
	var best *BestPerformer
	for _, rc := range deals {
		rate := 0.0
		if rc.TotalDeals > 0 {
			rate = float64(rc.WonDeals) / float64(rc.TotalDeals) * 100
		}
		if best == nil || rate > best.ConversionRate {
			best = &BestPerformer{RepID: rc.RepID, Name: rc.Name, ConversionRate: rate}
		}
	}
	return best
}
