package roster

import (
	"context"

	"github.com/salespulse/salespulse/internal/shared"
)

// Reader is the subset of roster queries the service relies on.
type Reader interface {
	ListManagers(ctx context.Context) ([]Manager, error)
	TeamMemberIDs(ctx context.Context, managerID int64) ([]int64, error)
	ActiveReps(ctx context.Context, ids []int64) ([]SalesRep, error)
}

// Service resolves manager filters into rep scopes.
type Service struct {
	repo Reader
}

// NewService constructs a Service.
func NewService(repo Reader) *Service {
	return &Service{repo: repo}
}

// Managers lists the selectable team filters.
func (s *Service) Managers(ctx context.Context) ([]Manager, error) {
	return s.repo.ListManagers(ctx)
}

// ResolveScope turns a filter into the rep scope every aggregation honours.
// A manager with no direct reports yields an empty restricted scope; callers
// must return empty results for it, never the unfiltered aggregate.
func (s *Service) ResolveScope(ctx context.Context, f shared.Filter) (shared.RepScope, error) {
	if f.SalesManagerID == nil {
		return shared.AllReps(), nil
	}
	ids, err := s.repo.TeamMemberIDs(ctx, *f.SalesManagerID)
	if err != nil {
		return shared.RepScope{}, err
	}
	return shared.Team(ids), nil
}

// ScopedReps returns active reps inside the scope, short-circuiting the
// query when the scope is restricted to nobody.
func (s *Service) ScopedReps(ctx context.Context, scope shared.RepScope) ([]SalesRep, error) {
	if scope.Empty() {
		return nil, nil
	}
	return s.repo.ActiveReps(ctx, scope.Param())
}
