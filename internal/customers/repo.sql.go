package customers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads for customer metrics.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StageHistory returns monthly stage transition groups. Customers are scoped
// to reps through their assignment.
func (r *Repository) StageHistory(ctx context.Context, start, end *time.Time, repIDs []int64) ([]StageMonthRow, error) {
	const query = `SELECT date_trunc('month', h.activity_date)::date,
       h.life_cycle_stage,
       COUNT(DISTINCT h.customer_id),
       COALESCE(SUM(h.revenue), 0)
FROM customer_stage_historical h
JOIN customers c ON c.id = h.customer_id
WHERE ($1::date IS NULL OR h.activity_date >= $1)
  AND ($2::date IS NULL OR h.activity_date <= $2)
  AND ($3::bigint[] IS NULL OR c.sales_rep_id = ANY($3))
GROUP BY 1, 2
ORDER BY 1`
	rows, err := r.pool.Query(ctx, query, start, end, repIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StageMonthRow
	for rows.Next() {
		var row StageMonthRow
		if err := rows.Scan(&row.Month, &row.Stage, &row.CustomerCount, &row.Revenue); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CustomerCounts returns the total and at-risk customer counts in scope.
func (r *Repository) CustomerCounts(ctx context.Context, repIDs []int64) (total, atRisk int64, err error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE customer_lifecycle_stage = $2)
FROM customers
WHERE ($1::bigint[] IS NULL OR sales_rep_id = ANY($1))`
	err = r.pool.QueryRow(ctx, query, repIDs, atRiskStage).Scan(&total, &atRisk)
	return total, atRisk, err
}

// CustomersWithDecisionMaker counts customers with at least one contact
// flagged as a decision maker.
func (r *Repository) CustomersWithDecisionMaker(ctx context.Context, repIDs []int64) (int64, error) {
	const query = `SELECT COUNT(DISTINCT c.id)
FROM customers c
JOIN contacts ct ON ct.customer_id = c.id AND ct.is_dm
WHERE ($1::bigint[] IS NULL OR c.sales_rep_id = ANY($1))`
	var count int64
	err := r.pool.QueryRow(ctx, query, repIDs).Scan(&count)
	return count, err
}

// HealthEngagementScore returns the contact-score weighted average. The
// weighting lives in SQL; only the single numeric output matters here.
func (r *Repository) HealthEngagementScore(ctx context.Context, repIDs []int64) (float64, error) {
	const query = `SELECT COALESCE(
  SUM(ct.score * CASE WHEN ct.is_dm THEN 2 ELSE 1 END)::float8
  / NULLIF(SUM(CASE WHEN ct.is_dm THEN 2 ELSE 1 END), 0), 0)
FROM contacts ct
JOIN customers c ON c.id = ct.customer_id
WHERE ($1::bigint[] IS NULL OR c.sales_rep_id = ANY($1))`
	var score float64
	err := r.pool.QueryRow(ctx, query, repIDs).Scan(&score)
	return score, err
}

// RevenueSplit returns the repeat and total revenue amounts for the filter.
func (r *Repository) RevenueSplit(ctx context.Context, start, end *time.Time, repIDs []int64) (repeat, total float64, err error) {
	const query = `SELECT COALESCE(SUM(amount) FILTER (WHERE revenue_category = $4), 0), COALESCE(SUM(amount), 0)
FROM revenue
WHERE ($1::date IS NULL OR participation_dt >= $1)
  AND ($2::date IS NULL OR participation_dt <= $2)
  AND ($3::bigint[] IS NULL OR sales_rep_id = ANY($3))`
	err = r.pool.QueryRow(ctx, query, start, end, repIDs, repeatCategory).Scan(&repeat, &total)
	return repeat, total, err
}

// TopCustomers ranks scoped customers by filtered revenue.
func (r *Repository) TopCustomers(ctx context.Context, start, end *time.Time, repIDs []int64, limit int) ([]TopCustomer, error) {
	const query = `SELECT c.id, c.name, COALESCE(c.industry, ''), COALESCE(c.customer_lifecycle_stage, ''),
       COALESCE(rv.amount, 0), COALESCE(dl.deals, 0), c.is_dm,
       ev.last_touch
FROM customers c
LEFT JOIN LATERAL (
  SELECT SUM(amount) AS amount FROM revenue
  WHERE customer_id = c.id
    AND ($1::date IS NULL OR participation_dt >= $1)
    AND ($2::date IS NULL OR participation_dt <= $2)
) rv ON TRUE
LEFT JOIN LATERAL (
  SELECT COUNT(*) AS deals FROM deals WHERE customer_id = c.id
) dl ON TRUE
LEFT JOIN LATERAL (
  SELECT MAX(event_date) AS last_touch FROM events WHERE customer_id = c.id
) ev ON TRUE
WHERE ($3::bigint[] IS NULL OR c.sales_rep_id = ANY($3))
ORDER BY COALESCE(rv.amount, 0) DESC, c.id
LIMIT $4`
	rows, err := r.pool.Query(ctx, query, start, end, repIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopCustomer
	for rows.Next() {
		var tc TopCustomer
		if err := rows.Scan(&tc.CustomerID, &tc.Name, &tc.Industry, &tc.LifecycleStage, &tc.Revenue, &tc.DealCount, &tc.DecisionMaker, &tc.LastTouchpoint); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
