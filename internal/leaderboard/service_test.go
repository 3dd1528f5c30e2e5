package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/roster"
	"github.com/salespulse/salespulse/internal/shared"
)

type mockRepo struct {
	revenue []RepAmount
	targets []RepAmount
	deals   []Deal
	calls   int
}

func (m *mockRepo) RepRevenue(ctx context.Context, start, end *time.Time, repIDs []int64) ([]RepAmount, error) {
	m.calls++
	return m.revenue, nil
}

func (m *mockRepo) RepTargets(ctx context.Context, start, end *time.Time, repIDs []int64) ([]RepAmount, error) {
	return m.targets, nil
}

func (m *mockRepo) RepDeals(ctx context.Context, repIDs []int64) ([]Deal, error) {
	return m.deals, nil
}

type mockRoster struct {
	scope shared.RepScope
	reps  []roster.SalesRep
}

func (m *mockRoster) ResolveScope(ctx context.Context, f shared.Filter) (shared.RepScope, error) {
	if f.SalesManagerID == nil {
		return shared.AllReps(), nil
	}
	return m.scope, nil
}

func (m *mockRoster) ScopedReps(ctx context.Context, scope shared.RepScope) ([]roster.SalesRep, error) {
	if scope.Empty() {
		return nil, nil
	}
	return m.reps, nil
}

func mgrReps() []roster.SalesRep {
	mgr := int64(7)
	return []roster.SalesRep{
		{ID: 1, Name: "Ada", ManagerID: &mgr, IsActive: true},
		{ID: 2, Name: "Ben", ManagerID: &mgr, IsActive: true},
	}
}

func TestScoreRepBasics(t *testing.T) {
	repo := &mockRepo{
		revenue: []RepAmount{{RepID: 1, Amount: 150}},
		targets: []RepAmount{{RepID: 1, Amount: 100}},
		deals: []Deal{
			{RepID: 1, Stage: "closed_won", MaxPotential: 200, HighRisk: "no"},
			{RepID: 1, Stage: "prospecting", MaxPotential: 100, HighRisk: "yes"},
		},
	}
	svc := NewService(repo, &mockRoster{reps: mgrReps()}, nil)

	rows, err := svc.GetLeaderboard(context.Background(), shared.Filter{}, DefaultSort())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var ada Row
	for _, row := range rows {
		if row.RepID == 1 {
			ada = row
		}
	}
	assert.Equal(t, 150.0, ada.Revenue)
	assert.InDelta(t, 150.0, ada.TargetPercentage, 1e-9)
	assert.Equal(t, 2, ada.TotalDeals)
	assert.Equal(t, 1, ada.ClosedWonDeals)
	assert.InDelta(t, 50.0, ada.ConversionRate, 1e-9)
	assert.InDelta(t, 150.0, ada.AvgDealSize, 1e-9)
	assert.InDelta(t, 0.5, ada.RiskRatio, 1e-9)
	// round(150*0.5 + 50*1.5 + 50*0.2) = 160, clamped to 100.
	assert.Equal(t, 100, ada.PerformanceScore)
}

func TestZeroTargetFloor(t *testing.T) {
	row := scoreRep(roster.SalesRep{ID: 1, Name: "Ada"}, 50, 0, nil)
	// Floor of 1 stands in for the missing target.
	assert.InDelta(t, 5000.0, row.TargetPercentage, 1e-9)
}

func TestCapitalisedRiskFlagNotCounted(t *testing.T) {
	row := scoreRep(roster.SalesRep{ID: 1}, 0, 100, []Deal{
		{RepID: 1, Stage: "prospecting", HighRisk: "Yes"},
		{RepID: 1, Stage: "prospecting", HighRisk: "yes"},
	})
	assert.Equal(t, 1, row.HighRiskDeals)
}

func TestWonLiteralIsExact(t *testing.T) {
	row := scoreRep(roster.SalesRep{ID: 1}, 0, 100, []Deal{
		{RepID: 1, Stage: "closed won"},
		{RepID: 1, Stage: "closed_won"},
		{RepID: 1, Stage: "won"},
	})
	assert.Equal(t, 1, row.ClosedWonDeals)
}

func TestEmptyTeamEmptyBoard(t *testing.T) {
	repo := &mockRepo{revenue: []RepAmount{{RepID: 1, Amount: 999}}}
	svc := NewService(repo, &mockRoster{scope: shared.Team(nil)}, nil)

	id := int64(9)
	rows, err := svc.GetLeaderboard(context.Background(), shared.Filter{SalesManagerID: &id}, DefaultSort())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, repo.calls, "empty scope must not query the store")
}

func TestSortStableAndIdempotent(t *testing.T) {
	rows := []Row{
		{RepID: 1, Name: "Ada", Revenue: 100, PerformanceScore: 80},
		{RepID: 2, Name: "Ben", Revenue: 200, PerformanceScore: 80},
		{RepID: 3, Name: "Cal", Revenue: 50, PerformanceScore: 90},
	}

	srt := normalizeSort(Sort{Key: "performance_score", Order: "desc"})
	sortRows(rows, srt)
	require.Equal(t, []int64{3, 1, 2}, ids(rows), "ties keep insertion order")

	sortRows(rows, srt)
	assert.Equal(t, []int64{3, 1, 2}, ids(rows), "re-sorting is idempotent")

	sortRows(rows, normalizeSort(Sort{Key: "revenue", Order: "asc"}))
	assert.Equal(t, []int64{3, 1, 2}, ids(rows))
}

func TestInvalidSortFallsBack(t *testing.T) {
	srt := normalizeSort(Sort{Key: "drop table", Order: "sideways"})
	assert.Equal(t, DefaultSortKey, srt.Key)
	assert.Equal(t, DefaultSortOrder, srt.Order)
}

func ids(rows []Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.RepID
	}
	return out
}
