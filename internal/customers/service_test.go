package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/shared"
)

type mockRepo struct {
	history    []StageMonthRow
	total      int64
	atRisk     int64
	withDM     int64
	health     float64
	repeat     float64
	revenue    float64
	top        []TopCustomer
	lastLimit  int
	queryCalls int
}

func (m *mockRepo) StageHistory(ctx context.Context, start, end *time.Time, repIDs []int64) ([]StageMonthRow, error) {
	m.queryCalls++
	return m.history, nil
}

func (m *mockRepo) CustomerCounts(ctx context.Context, repIDs []int64) (int64, int64, error) {
	m.queryCalls++
	return m.total, m.atRisk, nil
}

func (m *mockRepo) CustomersWithDecisionMaker(ctx context.Context, repIDs []int64) (int64, error) {
	return m.withDM, nil
}

func (m *mockRepo) HealthEngagementScore(ctx context.Context, repIDs []int64) (float64, error) {
	return m.health, nil
}

func (m *mockRepo) RevenueSplit(ctx context.Context, start, end *time.Time, repIDs []int64) (float64, float64, error) {
	return m.repeat, m.revenue, nil
}

func (m *mockRepo) TopCustomers(ctx context.Context, start, end *time.Time, repIDs []int64, limit int) ([]TopCustomer, error) {
	m.lastLimit = limit
	return m.top, nil
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

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestLifecycleCompositionOrdering(t *testing.T) {
	repo := &mockRepo{history: []StageMonthRow{
		{Month: month(2025, 2), Stage: "Loyal", CustomerCount: 5, Revenue: 500},
		{Month: month(2025, 1), Stage: "At Risk", CustomerCount: 2, Revenue: 100},
		{Month: month(2025, 1), Stage: "Dormant", CustomerCount: 1, Revenue: 0},
		{Month: month(2025, 1), Stage: "Acquisition", CustomerCount: 3, Revenue: 250},
		{Month: month(2025, 1), Stage: "Churned", CustomerCount: 1, Revenue: 0},
	}}
	svc := NewService(repo, &mockRoster{}, nil)

	months, err := svc.LifecycleComposition(context.Background(), shared.Filter{})
	require.NoError(t, err)
	require.Len(t, months, 2)

	jan := months[0]
	assert.Equal(t, "2025-01", jan.Month)
	names := make([]string, 0, len(jan.Stages))
	for _, s := range jan.Stages {
		names = append(names, s.Stage)
	}
	// Fixed order first, unknown stages alphabetical after.
	assert.Equal(t, []string{"Acquisition", "At Risk", "Churned", "Dormant"}, names)

	assert.Equal(t, "2025-02", months[1].Month)
}

func TestLifecyclePercentagesSumTo100(t *testing.T) {
	repo := &mockRepo{history: []StageMonthRow{
		{Month: month(2025, 1), Stage: "Acquisition", CustomerCount: 3},
		{Month: month(2025, 1), Stage: "Loyal", CustomerCount: 4},
		{Month: month(2025, 1), Stage: "At Risk", CustomerCount: 5},
	}}
	svc := NewService(repo, &mockRoster{}, nil)

	months, err := svc.LifecycleComposition(context.Background(), shared.Filter{})
	require.NoError(t, err)
	require.Len(t, months, 1)

	var sum float64
	for _, s := range months[0].Stages {
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestHeroMetricsRates(t *testing.T) {
	repo := &mockRepo{
		total:   40,
		atRisk:  10,
		withDM:  30,
		health:  72.5,
		repeat:  250,
		revenue: 1000,
	}
	svc := NewService(repo, &mockRoster{}, nil)

	metrics, err := svc.HeroMetrics(context.Background(), shared.Filter{})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, metrics.AtRiskRate, 1e-9)
	assert.InDelta(t, 75.0, metrics.CustomersWithDmRate, 1e-9)
	assert.InDelta(t, 72.5, metrics.HealthEngagementScore, 1e-9)
	assert.InDelta(t, 25.0, metrics.RepeatRevenueRate, 1e-9)
}

func TestHeroMetricsZeroDenominators(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockRoster{}, nil)

	metrics, err := svc.HeroMetrics(context.Background(), shared.Filter{})
	require.NoError(t, err)
	assert.Zero(t, metrics.AtRiskRate)
	assert.Zero(t, metrics.CustomersWithDmRate)
	assert.Zero(t, metrics.RepeatRevenueRate)
}

func TestEmptyTeamShortCircuits(t *testing.T) {
	repo := &mockRepo{history: []StageMonthRow{{Month: month(2025, 1), Stage: "Loyal", CustomerCount: 9}}}
	svc := NewService(repo, &mockRoster{scope: shared.Team(nil)}, nil)

	id := int64(5)
	f := shared.Filter{SalesManagerID: &id}

	months, err := svc.LifecycleComposition(context.Background(), f)
	require.NoError(t, err)
	assert.Empty(t, months)

	metrics, err := svc.HeroMetrics(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, HeroMetrics{}, metrics)

	top, err := svc.TopCustomers(context.Background(), f, 10)
	require.NoError(t, err)
	assert.Empty(t, top)

	assert.Equal(t, 0, repo.queryCalls, "empty scope must not query the store")
}

func TestTopCustomersLimitBounds(t *testing.T) {
	repo := &mockRepo{top: []TopCustomer{{CustomerID: 1, Name: "Acme"}}}
	svc := NewService(repo, &mockRoster{}, nil)

	_, err := svc.TopCustomers(context.Background(), shared.Filter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopLimit, repo.lastLimit)

	_, err = svc.TopCustomers(context.Background(), shared.Filter{}, 900)
	require.NoError(t, err)
	assert.Equal(t, MaxTopLimit, repo.lastLimit)
}
