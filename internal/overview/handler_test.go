package overview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/platform/httpx"
	"github.com/salespulse/salespulse/internal/shared"
)

type stubService struct {
	summary Summary
	err     error
	last    shared.Filter
}

func (s *stubService) GetOverview(ctx context.Context, f shared.Filter) (Summary, error) {
	s.last = f
	return s.summary, s.err
}

func TestHandleOverviewEnvelope(t *testing.T) {
	svc := &stubService{summary: Summary{TotalRevenue: 350, TotalTarget: 100, CompletionPercentage: 350}}
	h := NewHandler(nil, svc)
	r := chi.NewRouter()
	r.Route("/api/overview", h.MountRoutes)

	req := httptest.NewRequest("GET", "/api/overview?start_date=2025-01-01&sales_manager_id=7", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)

	require.NotNil(t, svc.last.StartDate)
	require.NotNil(t, svc.last.SalesManagerID)
	assert.Equal(t, int64(7), *svc.last.SalesManagerID)
}

func TestHandleOverviewStoreError(t *testing.T) {
	svc := &stubService{err: errors.New("store unreachable")}
	h := NewHandler(nil, svc)
	r := chi.NewRouter()
	r.Route("/api/overview", h.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/overview", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "store unreachable", env.Error)
}

func TestHandleOverviewMalformedFilterDefaults(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(nil, svc)
	r := chi.NewRouter()
	r.Route("/api/overview", h.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/overview?start_date=garbage", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.last.StartDate)
}
