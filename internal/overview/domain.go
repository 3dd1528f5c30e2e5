// Package overview computes the dashboard headline aggregation: revenue and
// target totals, completion percentage, best performer and average deal size.
package overview

import "github.com/salespulse/salespulse/internal/roster"

// wonStageLiterals is the stage spelling set this endpoint treats as a won
// deal. The set differs from the leaderboard's ("closed_won" only); the
// inconsistency is load-bearing upstream, so each endpoint keeps its own set.
var wonStageLiterals = []string{"won", "closed won", "closed-won"}

// Summary is the overview card payload.
type Summary struct {
	TotalRevenue         float64          `json:"totalRevenue"`
	TotalTarget          float64          `json:"totalTarget"`
	CompletionPercentage float64          `json:"completionPercentage"`
	AvgDealSize          float64          `json:"avgDealSize"`
	BestPerformer        *BestPerformer   `json:"bestPerformer"`
	Managers             []roster.Manager `json:"managers"`
}

// BestPerformer is the rep with the highest deal conversion rate.
type BestPerformer struct {
	RepID          int64   `json:"repId"`
	Name           string  `json:"name"`
	ConversionRate float64 `json:"conversionRate"`
}

// RevenueTotals aggregates the filtered revenue rows.
type RevenueTotals struct {
	Total  float64
	Events int64
}

// RepDealCounts is a per-rep slice of the deal snapshot.
type RepDealCounts struct {
	RepID      int64
	Name       string
	TotalDeals int64
	WonDeals   int64
}
