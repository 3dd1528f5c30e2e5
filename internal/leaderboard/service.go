package leaderboard

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salespulse/salespulse/internal/platform/cache"
	"github.com/salespulse/salespulse/internal/roster"
	"github.com/salespulse/salespulse/internal/shared"
)

// Reader exposes the repository queries the service relies on.
type Reader interface {
	RepRevenue(ctx context.Context, start, end *time.Time, repIDs []int64) ([]RepAmount, error)
	RepTargets(ctx context.Context, start, end *time.Time, repIDs []int64) ([]RepAmount, error)
	RepDeals(ctx context.Context, repIDs []int64) ([]Deal, error)
}

// RosterService resolves manager filters into rep scopes.
type RosterService interface {
	ResolveScope(ctx context.Context, f shared.Filter) (shared.RepScope, error)
	ScopedReps(ctx context.Context, scope shared.RepScope) ([]roster.SalesRep, error)
}

// Sort describes the caller-selectable ranking order.
type Sort struct {
	Key   string
	Order string
}

// DefaultSort is applied when the caller supplies nothing usable.
func DefaultSort() Sort {
	return Sort{Key: DefaultSortKey, Order: DefaultSortOrder}
}

// Service scores each active rep for the leaderboard.
type Service struct {
	repo   Reader
	roster RosterService
	cache  *cache.Versioned
}

// NewService wires the repository, roster resolution and cache helper.
func NewService(repo Reader, rosterSvc RosterService, c *cache.Versioned) *Service {
	return &Service{repo: repo, roster: rosterSvc, cache: c}
}

// GetLeaderboard computes the scored and sorted rows for the filter.
func (s *Service) GetLeaderboard(ctx context.Context, f shared.Filter, srt Sort) ([]Row, error) {
	srt = normalizeSort(srt)
	loader := func(ctx context.Context) (any, error) {
		return s.load(ctx, f)
	}
	var rows []Row
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		rows = value.([]Row)
	} else {
		key, err := s.cache.BuildKey(ctx, "dashboard", "leaderboard", f.CacheToken())
		if err != nil {
			return nil, err
		}
		if err := s.cache.FetchJSON(ctx, key, &rows, loader); err != nil {
			return nil, err
		}
	}
	sortRows(rows, srt)
	return rows, nil
}

func (s *Service) load(ctx context.Context, f shared.Filter) ([]Row, error) {
	scope, err := s.roster.ResolveScope(ctx, f)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return []Row{}, nil
	}
	reps, err := s.roster.ScopedReps(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(reps) == 0 {
		return []Row{}, nil
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
	dealsByRep := make(map[int64][]Deal, len(reps))
	for _, d := range deals {
		dealsByRep[d.RepID] = append(dealsByRep[d.RepID], d)
	}

	rows := make([]Row, 0, len(reps))
	for _, rep := range reps {
		rows = append(rows, scoreRep(rep, revenueByRep[rep.ID], targetByRep[rep.ID], dealsByRep[rep.ID]))
	}
	return rows, nil
}

func amountIndex(amounts []RepAmount) map[int64]float64 {
	idx := make(map[int64]float64, len(amounts))
	for _, a := range amounts {
		idx[a.RepID] = a.Amount
	}
	return idx
}

func scoreRep(rep roster.SalesRep, revenue, target float64, deals []Deal) Row {
	row := Row{RepID: rep.ID, Name: rep.Name, Revenue: revenue, Target: target}

	effectiveTarget := target
	if effectiveTarget <= 0 {
		effectiveTarget = targetFloor
	}
	row.TargetPercentage = revenue / effectiveTarget * 100

	var potentialSum float64
	for _, d := range deals {
		row.TotalDeals++
		potentialSum += d.MaxPotential
		if parseStage(d.Stage) == stageClosedWon {
			row.ClosedWonDeals++
		}
		if parseRisk(d.HighRisk) == riskYes {
			row.HighRiskDeals++
		}
	}
	if row.TotalDeals > 0 {
		row.ConversionRate = float64(row.ClosedWonDeals) / float64(row.TotalDeals) * 100
		row.AvgDealSize = potentialSum / float64(row.TotalDeals)
		row.RiskRatio = float64(row.HighRiskDeals) / float64(row.TotalDeals)
	}

	row.PerformanceScore = performanceScore(row.TargetPercentage, row.ConversionRate, row.RiskRatio)
	return row
}

// performanceScore blends target attainment, conversion and risk, rounded
// and clamped to [0, 100].
func performanceScore(targetPct, conversionRate, riskRatio float64) int {
	raw := targetPct*scoreTargetWeight + conversionRate*scoreConversionWeight + (100-riskRatio*100)*scoreRiskWeight
	score := int(math.Round(raw))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeSort(srt Sort) Sort {
	srt.Key = strings.TrimSpace(strings.ToLower(srt.Key))
	srt.Order = strings.TrimSpace(strings.ToLower(srt.Order))
	if sortValue(Row{}, srt.Key) == nil {
		srt.Key = DefaultSortKey
	}
	if srt.Order != "asc" && srt.Order != "desc" {
		srt.Order = DefaultSortOrder
	}
	return srt
}

// sortRows orders rows by the requested key. The sort is stable so ties keep
// insertion order and re-sorting is idempotent.
func sortRows(rows []Row, srt Sort) {
	asc := srt.Order == "asc"
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := sortValue(rows[i], srt.Key), sortValue(rows[j], srt.Key)
		switch av := a.(type) {
		case float64:
			bv := b.(float64)
			if asc {
				return av < bv
			}
			return av > bv
		case string:
			bv := b.(string)
			if asc {
				return av < bv
			}
			return av > bv
		}
		return false
	})
}

func sortValue(row Row, key string) any {
	switch key {
	case "rep_id":
		return float64(row.RepID)
	case "name":
		return row.Name
	case "revenue":
		return row.Revenue
	case "target":
		return row.Target
	case "target_percentage":
		return row.TargetPercentage
	case "total_deals":
		return float64(row.TotalDeals)
	case "closed_won_deals":
		return float64(row.ClosedWonDeals)
	case "conversion_rate":
		return row.ConversionRate
	case "avg_deal_size":
		return row.AvgDealSize
	case "high_risk_deals":
		return float64(row.HighRiskDeals)
	case "risk_ratio":
		return row.RiskRatio
	case "performance_score":
		return float64(row.PerformanceScore)
	}
	return nil
}
