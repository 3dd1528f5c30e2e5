// Package roster resolves the sales rep hierarchy. The hierarchy is exactly
// one level deep: root managers (manager_id is null) own teams of individual
// reps.
package roster

import "time"

// SalesRep is a row of the externally owned rep roster.
type SalesRep struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	ManagerID       *int64     `json:"managerId,omitempty"`
	IsActive        bool       `json:"isActive"`
	HireDate        *time.Time `json:"hireDate,omitempty"`
	TerminationDate *time.Time `json:"terminationDate,omitempty"`
}

// Manager is the selectable team-filter shape surfaced on the dashboard.
type Manager struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
