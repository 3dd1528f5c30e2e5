package shared

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterFull(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/overview?start_date=2025-01-01&end_date=2025-03-31&sales_manager_id=7", nil)
	f := ParseFilter(r)

	require.NotNil(t, f.StartDate)
	require.NotNil(t, f.EndDate)
	require.NotNil(t, f.SalesManagerID)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), *f.EndDate)
	assert.Equal(t, int64(7), *f.SalesManagerID)
}

func TestParseFilterDropsMalformedFields(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"bad start date", "?start_date=not-a-date&sales_manager_id=7"},
		{"bad manager id", "?start_date=2025-01-01&sales_manager_id=abc"},
		{"negative manager id", "?sales_manager_id=-3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/overview"+tc.query, nil)
			f := ParseFilter(r)
			switch tc.name {
			case "bad start date":
				assert.Nil(t, f.StartDate)
				require.NotNil(t, f.SalesManagerID)
				assert.Equal(t, int64(7), *f.SalesManagerID)
			case "bad manager id":
				assert.NotNil(t, f.StartDate)
				assert.Nil(t, f.SalesManagerID)
			case "negative manager id":
				assert.Nil(t, f.SalesManagerID)
			}
		})
	}
}

func TestParseFilterEmpty(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/overview", nil)
	f := ParseFilter(r)
	assert.Nil(t, f.StartDate)
	assert.Nil(t, f.EndDate)
	assert.Nil(t, f.SalesManagerID)
	assert.False(t, f.HasRange())
	assert.Equal(t, "-:-:-", f.CacheToken())
}

func TestCacheTokenStable(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	id := int64(3)
	f := Filter{StartDate: &start, SalesManagerID: &id}
	assert.Equal(t, "2025-02-01:-:3", f.CacheToken())
}

func TestRepScope(t *testing.T) {
	all := AllReps()
	assert.False(t, all.Empty())
	assert.Nil(t, all.Param())
	assert.True(t, all.Contains(99))

	team := Team([]int64{1, 2})
	assert.False(t, team.Empty())
	assert.True(t, team.Contains(2))
	assert.False(t, team.Contains(3))

	empty := Team(nil)
	assert.True(t, empty.Empty())
}
