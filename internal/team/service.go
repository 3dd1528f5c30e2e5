package team

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salespulse/salespulse/internal/platform/cache"
	"github.com/salespulse/salespulse/internal/roster"
	"github.com/salespulse/salespulse/internal/shared"
)

// Reader exposes the repository queries the rollups rely on.
type Reader interface {
	RepRevenue(ctx context.Context, start, end *time.Time, repIDs []int64) ([]RepAmount, error)
	RepTargets(ctx context.Context, start, end *time.Time, repIDs []int64) ([]RepAmount, error)
	RepRevenueWindow(ctx context.Context, from, to time.Time, repIDs []int64) ([]RepAmount, error)
	RepDeals(ctx context.Context, repIDs []int64) ([]Deal, error)
}

// RosterService resolves the manager hierarchy.
type RosterService interface {
	Managers(ctx context.Context) ([]roster.Manager, error)
	ResolveScope(ctx context.Context, f shared.Filter) (shared.RepScope, error)
	ScopedReps(ctx context.Context, scope shared.RepScope) ([]roster.SalesRep, error)
}

// Service computes both team rollup variants.
type Service struct {
	repo   Reader
	roster RosterService
	cache  *cache.Versioned
	now    func() time.Time
}

// NewService wires the repository, roster resolution and cache helper.
func NewService(repo Reader, rosterSvc RosterService, c *cache.Versioned) *Service {
	return &Service{repo: repo, roster: rosterSvc, cache: c, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// teamData is the shared per-team aggregate both variants start from.
type teamData struct {
	manager  roster.Manager
	members  []int64
	revenue  float64
	target   float64
	deals    int
	won      int
	highRisk int
}

// Rollups computes the target-threshold variant for every visible team.
func (s *Service) Rollups(ctx context.Context, f shared.Filter) ([]Rollup, error) {
	loader := func(ctx context.Context) (any, error) {
		teams, err := s.loadTeams(ctx, f)
		if err != nil {
			return nil, err
		}
		out := make([]Rollup, 0, len(teams))
		for _, td := range teams {
			out = append(out, rollupFromTeam(td))
		}
		return out, nil
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]Rollup), nil
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "teams", f.CacheToken())
	if err != nil {
		return nil, err
	}
	var rollups []Rollup
	if err := s.cache.FetchJSON(ctx, key, &rollups, loader); err != nil {
		return nil, err
	}
	return rollups, nil
}

// TrendRollups computes the revenue-trend variant. The trend window anchors
// on the filter's end date when present, otherwise on the current time.
func (s *Service) TrendRollups(ctx context.Context, f shared.Filter) ([]TrendRollup, error) {
	loader := func(ctx context.Context) (any, error) {
		teams, err := s.loadTeams(ctx, f)
		if err != nil {
			return nil, err
		}

		ref := s.now().UTC()
		if f.EndDate != nil {
			ref = *f.EndDate
		}
		windowStart := ref.AddDate(0, 0, -trendWindowDays)
		priorStart := ref.AddDate(0, 0, -2*trendWindowDays)

		scope, err := s.roster.ResolveScope(ctx, f)
		if err != nil {
			return nil, err
		}
		var last, prior []RepAmount
		if !scope.Empty() {
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				last, err = s.repo.RepRevenueWindow(gctx, windowStart, ref, scope.Param())
				return err
			})
			g.Go(func() error {
				var err error
				prior, err = s.repo.RepRevenueWindow(gctx, priorStart, windowStart, scope.Param())
				return err
			})
			if err := g.Wait(); err != nil {
				return nil, err
			}
		}
		lastByRep := amountIndex(last)
		priorByRep := amountIndex(prior)

		out := make([]TrendRollup, 0, len(teams))
		for _, td := range teams {
			var lastSum, priorSum float64
			for _, id := range td.members {
				lastSum += lastByRep[id]
				priorSum += priorByRep[id]
			}
			out = append(out, trendRollupFromTeam(td, lastSum, priorSum))
		}
		return out, nil
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]TrendRollup), nil
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "teams_trend", f.CacheToken())
	if err != nil {
		return nil, err
	}
	var rollups []TrendRollup
	if err := s.cache.FetchJSON(ctx, key, &rollups, loader); err != nil {
		return nil, err
	}
	return rollups, nil
}

// loadTeams groups scoped reps under their managers and aggregates the
// shared revenue/target/deal figures.
func (s *Service) loadTeams(ctx context.Context, f shared.Filter) ([]teamData, error) {
	managers, err := s.roster.Managers(ctx)
	if err != nil {
		return nil, err
	}
	if f.SalesManagerID != nil {
		managers = filterManagers(managers, *f.SalesManagerID)
	}

	scope, err := s.roster.ResolveScope(ctx, f)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return nil, nil
	}
	reps, err := s.roster.ScopedReps(ctx, scope)
	if err != nil {
		return nil, err
	}

	var (
		revenue []RepAmount
		targets []RepAmount
		deals   []Deal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenue, err = s.repo.RepRevenue(gctx, f.StartDate, f.EndDate, scope.Param())
		return err
	})
	g.Go(func() error {
		var err error
		targets, err = s.repo.RepTargets(gctx, f.StartDate, f.EndDate, scope.Param())
		return err
	})
	g.Go(func() error {
		var err error
		deals, err = s.repo.RepDeals(gctx, scope.Param())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	revenueByRep := amountIndex(revenue)
	targetByRep := amountIndex(targets)
	dealsByRep := make(map[int64][]Deal)
	for _, d := range deals {
		dealsByRep[d.RepID] = append(dealsByRep[d.RepID], d)
	}
	repsByManager := make(map[int64][]roster.SalesRep)
	for _, rep := range reps {
		if rep.ManagerID == nil {
			continue
		}
		repsByManager[*rep.ManagerID] = append(repsByManager[*rep.ManagerID], rep)
	}

	var teams []teamData
	for _, mgr := range managers {
		members := repsByManager[mgr.ID]
		td := teamData{manager: mgr, members: make([]int64, 0, len(members))}
		for _, rep := range members {
			td.members = append(td.members, rep.ID)
			td.revenue += revenueByRep[rep.ID]
			td.target += targetByRep[rep.ID]
			for _, d := range dealsByRep[rep.ID] {
				td.deals++
				if d.Stage == closedWonLiteral {
					td.won++
				}
				if d.HighRisk == "yes" {
					td.highRisk++
				}
			}
		}
		teams = append(teams, td)
	}
	return teams, nil
}

func rollupFromTeam(td teamData) Rollup {
	r := Rollup{
		ManagerID:     td.manager.ID,
		ManagerName:   td.manager.Name,
		TeamSize:      len(td.members),
		Revenue:       td.revenue,
		Target:        td.target,
		TotalDeals:    td.deals,
		HighRiskDeals: td.highRisk,
	}
	if td.target > 0 {
		r.TargetPercentage = td.revenue / td.target * 100
	}
	if td.deals > 0 {
		r.ConversionRate = float64(td.won) / float64(td.deals) * 100
	}
	riskRatio := 0.0
	if td.deals > 0 {
		riskRatio = float64(td.highRisk) / float64(td.deals)
	}
	if r.TeamSize > 0 {
		r.Efficiency = float64(td.deals) / float64(r.TeamSize)
	}
	r.Momentum = momentumFromTarget(r.TargetPercentage)
	r.RiskLevel = riskLevel(riskRatio)
	r.PerformanceScore = clampScore(r.TargetPercentage*scoreTargetWeightA +
		r.ConversionRate*scoreConversionWeightA +
		(100-riskRatio*100)*scoreRiskWeightA)
	return r
}

func trendRollupFromTeam(td teamData, last, prior float64) TrendRollup {
	r := TrendRollup{
		ManagerID:      td.manager.ID,
		ManagerName:    td.manager.Name,
		TeamSize:       len(td.members),
		Revenue:        td.revenue,
		Target:         td.target,
		TotalDeals:     td.deals,
		RevenueLast30:  last,
		RevenuePrior30: prior,
	}
	if td.target > 0 {
		r.TargetPercentage = td.revenue / td.target * 100
	}
	if td.deals > 0 {
		r.ConversionRate = float64(td.won) / float64(td.deals) * 100
	}
	if r.TeamSize > 0 {
		r.Efficiency = float64(td.deals) / float64(r.TeamSize)
	}
	r.GrowthRate = growthRate(last, prior)
	r.Momentum = momentumFromGrowth(r.GrowthRate)

	targetScore := capScore(r.TargetPercentage)
	conversionScore := capScore(r.ConversionRate)
	efficiencyScore := capScore(r.Efficiency * efficiencyScoreScale)
	r.PerformanceScore = clampScore(targetScore*scoreTargetWeightB +
		conversionScore*scoreConversionWeightB +
		efficiencyScore*scoreEfficiencyWeightB +
		momentumScore(r.Momentum)*scoreMomentumWeightB)
	return r
}

// growthRate returns the percentage change between adjacent windows. A team
// with no prior revenue but current revenue counts as a 100% jump; no
// revenue in either window is flat.
func growthRate(last, prior float64) float64 {
	if prior == 0 {
		if last > 0 {
			return 100
		}
		return 0
	}
	return (last - prior) / prior * 100
}

func capScore(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

func clampScore(raw float64) int {
	score := int(math.Round(raw))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func amountIndex(amounts []RepAmount) map[int64]float64 {
	idx := make(map[int64]float64, len(amounts))
	for _, a := range amounts {
		idx[a.RepID] = a.Amount
	}
	return idx
}

func filterManagers(managers []roster.Manager, id int64) []roster.Manager {
	for _, m := range managers {
		if m.ID == id {
			return []roster.Manager{m}
		}
	}
	return nil
}
