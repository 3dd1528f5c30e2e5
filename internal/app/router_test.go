package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/observability"
	"github.com/salespulse/salespulse/internal/overview"
	"github.com/salespulse/salespulse/internal/shared"
)

type stubOverview struct{}

func (stubOverview) GetOverview(ctx context.Context, f shared.Filter) (overview.Summary, error) {
	return overview.Summary{TotalRevenue: 42}, nil
}

func TestRouterHealthz(t *testing.T) {
	router := NewRouter(RouterParams{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := NewRouter(RouterParams{Metrics: observability.NewMetrics()})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterMountsOverview(t *testing.T) {
	router := NewRouter(RouterParams{
		OverviewHandler: overview.NewHandler(nil, stubOverview{}),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			TotalRevenue float64 `json:"totalRevenue"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, 42.0, envelope.Data.TotalRevenue)
}
