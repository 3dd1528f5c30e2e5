package roster

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads of the rep roster.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListManagers returns active root-level reps, the selectable team filters.
func (r *Repository) ListManagers(ctx context.Context) ([]Manager, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM sales_reps WHERE manager_id IS NULL AND is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var managers []Manager
	for rows.Next() {
		var m Manager
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		managers = append(managers, m)
	}
	return managers, rows.Err()
}

// TeamMemberIDs returns the ids of the manager's direct reports.
func (r *Repository) TeamMemberIDs(ctx context.Context, managerID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM sales_reps WHERE manager_id = $1 AND is_active ORDER BY id`, managerID)
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

// ActiveReps returns active non-manager reps, optionally restricted to a set
// of ids. A nil restriction means all reps.
func (r *Repository) ActiveReps(ctx context.Context, ids []int64) ([]SalesRep, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, manager_id, is_active, hire_date, termination_date
FROM sales_reps
WHERE is_active AND manager_id IS NOT NULL AND ($1::bigint[] IS NULL OR id = ANY($1))
ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reps []SalesRep
	for rows.Next() {
		var rep SalesRep
		if err := rows.Scan(&rep.ID, &rep.Name, &rep.ManagerID, &rep.IsActive, &rep.HireDate, &rep.TerminationDate); err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	return reps, rows.Err()
}
