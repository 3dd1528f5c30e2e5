package funnel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/shared"
)

type mockRepo struct {
	seeds      []int64
	history    []HistoryRow
	months     []NewDealsMonth
	queryCalls int
}

func (m *mockRepo) SeedDealIDs(ctx context.Context, start, end *time.Time, repIDs []int64) ([]int64, error) {
	m.queryCalls++
	return m.seeds, nil
}

func (m *mockRepo) HistoryForDeals(ctx context.Context, dealIDs []int64) ([]HistoryRow, error) {
	m.queryCalls++
	return m.history, nil
}

func (m *mockRepo) NewDealsByMonth(ctx context.Context, start, end *time.Time, repIDs []int64) ([]NewDealsMonth, error) {
	m.queryCalls++
	return m.months, nil
}

type mockRoster struct {
	scope shared.RepScope
}

func (m *mockRoster) ResolveScope(ctx context.Context, f shared.Filter) (shared.RepScope, error) {
	if f.SalesManagerID == nil {
		return shared.AllReps(), nil
	}
	return m.scope, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stageByName(t *testing.T, stages []WaterfallStage, name string) WaterfallStage {
	t.Helper()
	for _, s := range stages {
		if s.Stage == name {
			return s
		}
	}
	t.Fatalf("stage %q missing", name)
	return WaterfallStage{}
}

func TestWaterfallCumulativeReach(t *testing.T) {
	repo := &mockRepo{
		seeds: []int64{1},
		history: []HistoryRow{
			{DealID: 1, Stage: StageProspecting, Value: 100, ActivityDate: day(2025, time.January, 5)},
			{DealID: 1, Stage: StageQualified, Value: 120, ActivityDate: day(2025, time.February, 5)},
			{DealID: 1, Stage: StageProposal, Value: 150, ActivityDate: day(2025, time.March, 5)},
		},
	}
	svc := NewService(repo, &mockRoster{}, nil)

	stages, err := svc.Waterfall(context.Background(), shared.Filter{})
	require.NoError(t, err)
	require.Len(t, stages, 6)

	want := map[string]int{
		StageProspecting: 1,
		StageQualified:   1,
		StageProposal:    1,
		StageNegotiation: 0,
		StageClosedWon:   0,
		StageClosedLost:  0,
	}
	for name, count := range want {
		assert.Equal(t, count, stageByName(t, stages, name).Count, name)
	}
	// Every reached stage carries the most recent recorded value.
	assert.InDelta(t, 150, stageByName(t, stages, StageProspecting).Value, 0.001)
	assert.InDelta(t, 150, stageByName(t, stages, StageProposal).Value, 0.001)
}

func TestWaterfallStageOrderFixed(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockRoster{}, nil)

	stages, err := svc.Waterfall(context.Background(), shared.Filter{})
	require.NoError(t, err)

	var names []string
	for _, s := range stages {
		names = append(names, s.Stage)
		assert.Zero(t, s.Count)
		assert.Zero(t, s.Value)
	}
	assert.Equal(t, []string{"prospecting", "qualified", "proposal", "negotiation", "closed_won", "closed_lost"}, names)
}

func TestWaterfallWonLiteralNormalized(t *testing.T) {
	repo := &mockRepo{
		seeds: []int64{7},
		history: []HistoryRow{
			{DealID: 7, Stage: StageProspecting, Value: 40, ActivityDate: day(2025, time.April, 1)},
			{DealID: 7, Stage: StageNegotiation, Value: 55, ActivityDate: day(2025, time.May, 1)},
			{DealID: 7, Stage: "won", Value: 60, ActivityDate: day(2025, time.June, 1)},
		},
	}
	svc := NewService(repo, &mockRoster{}, nil)

	stages, err := svc.Waterfall(context.Background(), shared.Filter{})
	require.NoError(t, err)

	// A won deal counts in every linear stage it passed plus its terminal.
	for _, name := range []string{StageProspecting, StageQualified, StageProposal, StageNegotiation, StageClosedWon} {
		assert.Equal(t, 1, stageByName(t, stages, name).Count, name)
	}
	assert.Equal(t, 0, stageByName(t, stages, StageClosedLost).Count)
	assert.InDelta(t, 60, stageByName(t, stages, StageClosedWon).Value, 0.001)
}

func TestWaterfallMonotonicLinearCounts(t *testing.T) {
	repo := &mockRepo{
		seeds: []int64{1, 2, 3},
		history: []HistoryRow{
			{DealID: 1, Stage: StageProspecting, Value: 10, ActivityDate: day(2025, time.January, 1)},
			{DealID: 2, Stage: StageProspecting, Value: 20, ActivityDate: day(2025, time.January, 2)},
			{DealID: 2, Stage: StageQualified, Value: 20, ActivityDate: day(2025, time.February, 2)},
			{DealID: 3, Stage: StageProspecting, Value: 30, ActivityDate: day(2025, time.January, 3)},
			{DealID: 3, Stage: "lost", Value: 0, ActivityDate: day(2025, time.March, 3)},
		},
	}
	svc := NewService(repo, &mockRoster{}, nil)

	stages, err := svc.Waterfall(context.Background(), shared.Filter{})
	require.NoError(t, err)

	for i := 1; i < len(linearStages); i++ {
		prev := stageByName(t, stages, linearStages[i-1]).Count
		cur := stageByName(t, stages, linearStages[i]).Count
		assert.GreaterOrEqual(t, prev, cur)
	}
	assert.Equal(t, 3, stageByName(t, stages, StageProspecting).Count)
	assert.Equal(t, 1, stageByName(t, stages, StageClosedLost).Count)
}

func TestWaterfallUnknownStageIgnored(t *testing.T) {
	repo := &mockRepo{
		seeds: []int64{1},
		history: []HistoryRow{
			{DealID: 1, Stage: StageProspecting, Value: 10, ActivityDate: day(2025, time.January, 1)},
			{DealID: 1, Stage: "discovery", Value: 15, ActivityDate: day(2025, time.February, 1)},
		},
	}
	svc := NewService(repo, &mockRoster{}, nil)

	stages, err := svc.Waterfall(context.Background(), shared.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 1, stageByName(t, stages, StageProspecting).Count)
	assert.Equal(t, 0, stageByName(t, stages, StageQualified).Count)
	// The unknown row still refreshes the latest value.
	assert.InDelta(t, 15, stageByName(t, stages, StageProspecting).Value, 0.001)
}

func TestWaterfallEmptyTeamSkipsRepo(t *testing.T) {
	repo := &mockRepo{seeds: []int64{1}}
	managerID := int64(42)
	svc := NewService(repo, &mockRoster{scope: shared.Team(nil)}, nil)

	stages, err := svc.Waterfall(context.Background(), shared.Filter{SalesManagerID: &managerID})
	require.NoError(t, err)

	require.Len(t, stages, 6)
	for _, s := range stages {
		assert.Zero(t, s.Count)
	}
	assert.Zero(t, repo.queryCalls)
}

func TestNewDealsEmptyScope(t *testing.T) {
	repo := &mockRepo{months: []NewDealsMonth{{Month: "2025-01", Count: 3, TotalPotential: 900}}}
	managerID := int64(42)
	svc := NewService(repo, &mockRoster{scope: shared.Team(nil)}, nil)

	months, err := svc.NewDeals(context.Background(), shared.Filter{SalesManagerID: &managerID})
	require.NoError(t, err)

	assert.Empty(t, months)
	assert.Zero(t, repo.queryCalls)
}

func TestNewDealsPassThrough(t *testing.T) {
	repo := &mockRepo{months: []NewDealsMonth{
		{Month: "2025-01", Count: 3, TotalPotential: 900},
		{Month: "2025-02", Count: 1, TotalPotential: 250},
	}}
	svc := NewService(repo, &mockRoster{}, nil)

	months, err := svc.NewDeals(context.Background(), shared.Filter{})
	require.NoError(t, err)

	require.Len(t, months, 2)
	assert.Equal(t, "2025-01", months[0].Month)
	assert.InDelta(t, 250, months[1].TotalPotential, 0.001)
}
