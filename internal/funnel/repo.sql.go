package funnel

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads historical deal activity from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SeedDealIDs returns the deals whose earliest recorded activity is a
// prospecting entry inside the requested window. The window and rep scope
// apply to the seed row only; later history is scanned unfiltered.
func (r *Repository) SeedDealIDs(ctx context.Context, start, end *time.Time, repIDs []int64) ([]int64, error) {
	const query = `SELECT first.deal_id
FROM (
    SELECT DISTINCT ON (deal_id) deal_id, deal_stage, activity_date, sales_rep_id
    FROM deal_historical
    ORDER BY deal_id, activity_date, id
) first
WHERE first.deal_stage = $1
  AND ($2::date IS NULL OR first.activity_date >= $2)
  AND ($3::date IS NULL OR first.activity_date <= $3)
  AND ($4::bigint[] IS NULL OR first.sales_rep_id = ANY($4))
ORDER BY first.deal_id`
	rows, err := r.pool.Query(ctx, query, StageProspecting, start, end, repIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HistoryForDeals returns every historical row for the given deals, oldest
// first per deal.
func (r *Repository) HistoryForDeals(ctx context.Context, dealIDs []int64) ([]HistoryRow, error) {
	const query = `SELECT deal_id, deal_stage, COALESCE(deal_value, 0), activity_date
FROM deal_historical
WHERE deal_id = ANY($1)
ORDER BY deal_id, activity_date, id`
	rows, err := r.pool.Query(ctx, query, dealIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HistoryRow
	for rows.Next() {
		var row HistoryRow
		if err := rows.Scan(&row.DealID, &row.Stage, &row.Value, &row.ActivityDate); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// NewDealsByMonth buckets deals by the month of their earliest recorded
// activity and sums the deal potential at that first entry.
func (r *Repository) NewDealsByMonth(ctx context.Context, start, end *time.Time, repIDs []int64) ([]NewDealsMonth, error) {
	const query = `SELECT to_char(date_trunc('month', first.activity_date), 'YYYY-MM'),
       COUNT(*),
       COALESCE(SUM(first.deal_value), 0)
FROM (
    SELECT DISTINCT ON (deal_id) deal_id, deal_value, activity_date, sales_rep_id
    FROM deal_historical
    ORDER BY deal_id, activity_date, id
) first
WHERE ($1::date IS NULL OR first.activity_date >= $1)
  AND ($2::date IS NULL OR first.activity_date <= $2)
  AND ($3::bigint[] IS NULL OR first.sales_rep_id = ANY($3))
GROUP BY 1
ORDER BY 1`
	rows, err := r.pool.Query(ctx, query, start, end, repIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NewDealsMonth
	for rows.Next() {
		var row NewDealsMonth
		if err := rows.Scan(&row.Month, &row.Count, &row.TotalPotential); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
