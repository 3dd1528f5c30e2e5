package shared

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the inclusive ISO date format accepted on every endpoint.
const DateLayout = "2006-01-02"

var filterValidate = validator.New(validator.WithRequiredStructEnabled())

// Filter is the immutable value threaded through every aggregation request.
// A nil field means unbounded on that side; SalesManagerID restricts every
// rep-scoped query to that manager's direct reports.
type Filter struct {
	StartDate      *time.Time
	EndDate        *time.Time
	SalesManagerID *int64
}

type filterQuery struct {
	StartDate      string `validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `validate:"omitempty,datetime=2006-01-02"`
	SalesManagerID string `validate:"omitempty,number"`
}

// ParseFilter reads the recognised filter fields from the query string.
// Malformed values are dropped rather than rejected: a request with an
// unparseable date behaves as if the date was absent.
func ParseFilter(r *http.Request) Filter {
	q := filterQuery{
		StartDate:      strings.TrimSpace(r.URL.Query().Get("start_date")),
		EndDate:        strings.TrimSpace(r.URL.Query().Get("end_date")),
		SalesManagerID: strings.TrimSpace(r.URL.Query().Get("sales_manager_id")),
	}
	if err := filterValidate.Struct(q); err != nil {
		var invalid validator.ValidationErrors
		if ok := asValidationErrors(err, &invalid); ok {
			for _, fe := range invalid {
				switch fe.StructField() {
				case "StartDate":
					q.StartDate = ""
				case "EndDate":
					q.EndDate = ""
				case "SalesManagerID":
					q.SalesManagerID = ""
				}
			}
		} else {
			q = filterQuery{}
		}
	}

	var f Filter
	if q.StartDate != "" {
		if t, err := time.Parse(DateLayout, q.StartDate); err == nil {
			f.StartDate = &t
		}
	}
	if q.EndDate != "" {
		if t, err := time.Parse(DateLayout, q.EndDate); err == nil {
			f.EndDate = &t
		}
	}
	if q.SalesManagerID != "" {
		if id, err := strconv.ParseInt(q.SalesManagerID, 10, 64); err == nil && id > 0 {
			f.SalesManagerID = &id
		}
	}
	return f
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

// CacheToken renders the filter as a stable cache key fragment.
func (f Filter) CacheToken() string {
	parts := []string{dateToken(f.StartDate), dateToken(f.EndDate), managerToken(f.SalesManagerID)}
	return strings.Join(parts, ":")
}

// HasRange reports whether any date bound is set.
func (f Filter) HasRange() bool {
	return f.StartDate != nil || f.EndDate != nil
}

func dateToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(DateLayout)
}

func managerToken(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

// MonthKey formats a timestamp as the month bucket used by the lifecycle and
// new-deals tables.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// TruncMonth returns the first day of t's month in UTC.
func TruncMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
