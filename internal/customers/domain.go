// Package customers computes the customer-facing dashboard metrics: monthly
// lifecycle composition, the hero rates and the top-customers table.
package customers

import (
	"sort"
	"time"
)

// stageDisplayOrder fixes the stacked-chart ordering. Unrecognised stages are
// appended alphabetically so charts stay deterministic across periods.
var stageDisplayOrder = []string{"Acquisition", "Newly Acquired", "Loyal", "At Risk"}

// atRiskStage is the lifecycle literal the hero rate counts.
const atRiskStage = "At Risk"

// repeatCategory is the revenue category literal counted as repeat revenue.
const repeatCategory = "repeat"

// StageMonthRow is the raw grouped slice of customer_stage_historical.
type StageMonthRow struct {
	Month         time.Time
	Stage         string
	CustomerCount int
	Revenue       float64
}

// StageSlice is one stage inside a month's composition.
type StageSlice struct {
	Stage         string  `json:"stage"`
	CustomerCount int     `json:"customerCount"`
	TotalRevenue  float64 `json:"totalRevenue"`
	Percentage    float64 `json:"percentage"`
}

// MonthComposition is one month of the lifecycle chart, stages in display
// order.
type MonthComposition struct {
	Month  string       `json:"month"`
	Stages []StageSlice `json:"stages"`
}

// HeroMetrics is the four-rate card.
type HeroMetrics struct {
	AtRiskRate            float64 `json:"atRiskRate"`
	CustomersWithDmRate   float64 `json:"customersWithDmRate"`
	HealthEngagementScore float64 `json:"healthEngagementScore"`
	RepeatRevenueRate     float64 `json:"repeatRevenueRate"`
}

// TopCustomer is one row of the top-customers table.
type TopCustomer struct {
	CustomerID     int64      `json:"customerId"`
	Name           string     `json:"name"`
	Industry       string     `json:"industry"`
	LifecycleStage string     `json:"lifecycleStage"`
	Revenue        float64    `json:"revenue"`
	DealCount      int        `json:"dealCount"`
	DecisionMaker  bool       `json:"decisionMaker"`
	LastTouchpoint *time.Time `json:"lastTouchpoint,omitempty"`
}

// orderStages sorts stage names by display order, unknown stages last in
// alphabetical order.
func orderStages(stages []string) []string {
	rank := make(map[string]int, len(stageDisplayOrder))
	for i, s := range stageDisplayOrder {
		rank[s] = i
	}
	sort.SliceStable(stages, func(i, j int) bool {
		ri, iKnown := rank[stages[i]]
		rj, jKnown := rank[stages[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return stages[i] < stages[j]
		}
	})
	return stages
}
