package leaderboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads for leaderboard scoring.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RepRevenue sums filtered revenue per rep.
func (r *Repository) RepRevenue(ctx context.Context, start, end *time.Time, repIDs []int64) ([]RepAmount, error) {
	const query = `SELECT sales_rep_id, COALESCE(SUM(amount), 0)
FROM revenue
WHERE ($1::date IS NULL OR participation_dt >= $1)
  AND ($2::date IS NULL OR participation_dt <= $2)
  AND ($3::bigint[] IS NULL OR sales_rep_id = ANY($3))
GROUP BY sales_rep_id`
	return r.queryAmounts(ctx, query, start, end, repIDs)
}

// RepTargets sums filtered monthly targets per rep.
func (r *Repository) RepTargets(ctx context.Context, start, end *time.Time, repIDs []int64) ([]RepAmount, error) {
	const query = `SELECT sales_rep_id, COALESCE(SUM(value), 0)
FROM targets
WHERE ($1::date IS NULL OR target_month >= $1)
  AND ($2::date IS NULL OR target_month <= $2)
  AND ($3::bigint[] IS NULL OR sales_rep_id = ANY($3))
GROUP BY sales_rep_id`
	return r.queryAmounts(ctx, query, start, end, repIDs)
}

func (r *Repository) queryAmounts(ctx context.Context, query string, start, end *time.Time, repIDs []int64) ([]RepAmount, error) {
	rows, err := r.pool.Query(ctx, query, start, end, repIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RepAmount
	for rows.Next() {
		var ra RepAmount
		if err := rows.Scan(&ra.RepID, &ra.Amount); err != nil {
			return nil, err
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}

// RepDeals returns the current deal snapshot for the scoped reps. Stage and
// risk flag are returned raw; the service maps them at its boundary.
func (r *Repository) RepDeals(ctx context.Context, repIDs []int64) ([]Deal, error) {
	const query = `SELECT sales_rep_id, stage, COALESCE(max_deal_potential, 0), COALESCE(is_high_risk, '')
FROM deals
WHERE ($1::bigint[] IS NULL OR sales_rep_id = ANY($1))
ORDER BY id`
	rows, err := r.pool.Query(ctx, query, repIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Deal
	for rows.Next() {
		var d Deal
		if err := rows.Scan(&d.RepID, &d.Stage, &d.MaxPotential, &d.HighRisk); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
