// Package leaderboard scores individual reps for the ranking table.
package leaderboard

import "strings"

// Stage literal this endpoint treats as a won deal. Deliberately narrower
// than the overview's literal set; the difference is load-bearing upstream.
const closedWonLiteral = "closed_won"

// Performance score weights and the ranking defaults. Tuning constants with
// no documented derivation; kept as named values, not inferred.
const (
	scoreTargetWeight     = 0.5
	scoreConversionWeight = 1.5
	scoreRiskWeight       = 0.2

	// A rep without targets scores against a floor of 1 instead of
	// dividing by zero, biasing targetPercentage toward 0. Intentional.
	targetFloor = 1.0

	DefaultSortKey   = "performance_score"
	DefaultSortOrder = "desc"
)

// Row is one leaderboard entry.
type Row struct {
	RepID            int64   `json:"repId"`
	Name             string  `json:"name"`
	Revenue          float64 `json:"revenue"`
	Target           float64 `json:"target"`
	TargetPercentage float64 `json:"targetPercentage"`
	TotalDeals       int     `json:"totalDeals"`
	ClosedWonDeals   int     `json:"closedWonDeals"`
	ConversionRate   float64 `json:"conversionRate"`
	AvgDealSize      float64 `json:"avgDealSize"`
	HighRiskDeals    int     `json:"highRiskDeals"`
	RiskRatio        float64 `json:"riskRatio"`
	PerformanceScore int     `json:"performanceScore"`
}

// RepAmount is a per-rep monetary aggregate row.
type RepAmount struct {
	RepID  int64
	Amount float64
}

// Deal is the snapshot slice the scoring consumes. Stage and HighRisk arrive
// as loosely typed strings and are mapped to closed variants at this
// boundary.
type Deal struct {
	RepID        int64
	Stage        string
	MaxPotential float64
	HighRisk     string
}

type stageKind int

const (
	stageOther stageKind = iota
	stageClosedWon
)

func parseStage(raw string) stageKind {
	if raw == closedWonLiteral {
		return stageClosedWon
	}
	return stageOther
}

type riskFlag int

const (
	riskUnknown riskFlag = iota
	riskYes
	riskNo
)

// parseRisk matches the lowercase literal "yes". The snapshot field is
// canonically "Yes"/"No" capitalised elsewhere, so capitalised values land in
// riskUnknown; this mirrors the upstream case-sensitivity hazard.
func parseRisk(raw string) riskFlag {
	switch raw {
	case "yes":
		return riskYes
	case "no":
		return riskNo
	}
	if strings.TrimSpace(raw) == "" {
		return riskNo
	}
	return riskUnknown
}
