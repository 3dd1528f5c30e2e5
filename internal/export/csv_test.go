package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/leaderboard"
	"github.com/salespulse/salespulse/internal/overview"
	"github.com/salespulse/salespulse/internal/shared"
)

func TestWriteSummaryCSV(t *testing.T) {
	summary := overview.Summary{
		TotalRevenue:         350,
		TotalTarget:          100,
		CompletionPercentage: 350,
		AvgDealSize:          175,
		BestPerformer:        &overview.BestPerformer{Name: "Ada", ConversionRate: 80},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteSummaryCSV(buf, summary))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, []string{"Total Revenue", "350.00"}, records[1])
	assert.Equal(t, []string{"Best Performer", "Ada"}, records[5])
}

func TestWriteSummaryCSVNoBestPerformer(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteSummaryCSV(buf, overview.Summary{}))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestWriteLeaderboardCSV(t *testing.T) {
	rows := []leaderboard.Row{
		{Name: "Ada", Revenue: 500, Target: 400, TargetPercentage: 125, TotalDeals: 4, ClosedWonDeals: 2, ConversionRate: 50, PerformanceScore: 98},
		{Name: "Bo", Revenue: 100, Target: 200, TargetPercentage: 50, PerformanceScore: 25},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteLeaderboardCSV(buf, rows))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Rep", records[0][0])
	assert.Equal(t, "Ada", records[1][0])
	assert.Equal(t, "98", records[1][10])
}

type stubSummary struct {
	summary overview.Summary
}

func (s *stubSummary) GetOverview(ctx context.Context, f shared.Filter) (overview.Summary, error) {
	return s.summary, nil
}

type stubBoard struct {
	rows []leaderboard.Row
}

func (s *stubBoard) GetLeaderboard(ctx context.Context, f shared.Filter, srt leaderboard.Sort) ([]leaderboard.Row, error) {
	return s.rows, nil
}

func TestDashboardCSVDownload(t *testing.T) {
	h := NewHandler(nil,
		&stubSummary{summary: overview.Summary{TotalRevenue: 42}},
		&stubBoard{rows: []leaderboard.Row{{Name: "Ada"}}},
	)

	req := httptest.NewRequest("GET", "/dashboard.csv", nil)
	rec := httptest.NewRecorder()
	h.handleDashboardCSV(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "Total Revenue,42.00"))
	assert.True(t, strings.Contains(body, "Ada"))
}
