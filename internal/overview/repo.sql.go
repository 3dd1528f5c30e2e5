package overview

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads for the overview aggregation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RevenueTotals sums filtered revenue rows and counts the revenue events.
// Date bounds are inclusive on participation_dt; nil bounds are unbounded.
func (r *Repository) RevenueTotals(ctx context.Context, start, end *time.Time, repIDs []int64) (RevenueTotals, error) {
	const query = `SELECT COALESCE(SUM(amount), 0), COUNT(*)
FROM revenue
WHERE ($1::date IS NULL OR participation_dt >= $1)
  AND ($2::date IS NULL OR participation_dt <= $2)
  AND ($3::bigint[] IS NULL OR sales_rep_id = ANY($3))`
	var totals RevenueTotals
	if err := r.pool.QueryRow(ctx, query, start, end, repIDs).Scan(&totals.Total, &totals.Events); err != nil {
		return RevenueTotals{}, err
	}
	return totals, nil
}

// TargetTotal sums filtered monthly targets.
func (r *Repository) TargetTotal(ctx context.Context, start, end *time.Time, repIDs []int64) (float64, error) {
	const query = `SELECT COALESCE(SUM(value), 0)
FROM targets
WHERE ($1::date IS NULL OR target_month >= $1)
  AND ($2::date IS NULL OR target_month <= $2)
  AND ($3::bigint[] IS NULL OR sales_rep_id = ANY($3))`
	var total float64
	if err := r.pool.QueryRow(ctx, query, start, end, repIDs).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// RepDealCounts returns per-rep deal totals from the current snapshot, with
// won deals matched against the supplied stage literal set.
func (r *Repository) RepDealCounts(ctx context.Context, repIDs []int64, wonStages []string) ([]RepDealCounts, error) {
	const query = `SELECT sr.id, sr.name, COUNT(d.id), COUNT(d.id) FILTER (WHERE d.stage = ANY($2))
FROM sales_reps sr
LEFT JOIN deals d ON d.sales_rep_id = sr.id
WHERE sr.is_active AND sr.manager_id IS NOT NULL
  AND ($1::bigint[] IS NULL OR sr.id = ANY($1))
GROUP BY sr.id, sr.name
ORDER BY sr.id`
	rows, err := r.pool.Query(ctx, query, repIDs, wonStages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RepDealCounts
	for rows.Next() {
		var rc RepDealCounts
		if err := rows.Scan(&rc.RepID, &rc.Name, &rc.TotalDeals, &rc.WonDeals); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
