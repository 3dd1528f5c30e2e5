// Package funnel reconstructs the new-deals waterfall from historical deal
// activity.
package funnel

import "time"

// Funnel stage order. Won and lost are sibling terminals after negotiation.
const (
	StageProspecting = "prospecting"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosedWon   = "closed_won"
	StageClosedLost  = "closed_lost"
)

// linearStages are the ordered non-terminal stages.
var linearStages = []string{StageProspecting, StageQualified, StageProposal, StageNegotiation}

// allStages is the fixed output order, always returned in full even for an
// empty seed set.
var allStages = []string{StageProspecting, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost}

// terminalRank is the rank shared by both closed stages.
const terminalRank = 4

// stageRank maps a normalised stage to its funnel position; unknown stages
// return -1 and never advance a deal.
func stageRank(stage string) int {
	switch normalizeStage(stage) {
	case StageProspecting:
		return 0
	case StageQualified:
		return 1
	case StageProposal:
		return 2
	case StageNegotiation:
		return 3
	case StageClosedWon, StageClosedLost:
		return terminalRank
	}
	return -1
}

// normalizeStage folds the historical literals "won" and "lost" into the
// closed stage names.
func normalizeStage(stage string) string {
	switch stage {
	case "won":
		return StageClosedWon
	case "lost":
		return StageClosedLost
	}
	return stage
}

// WaterfallStage is one bar of the waterfall. Counts are cumulative-reached:
// a deal that reached negotiation counts toward every earlier stage too.
type WaterfallStage struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// HistoryRow is one historical activity entry for a deal.
type HistoryRow struct {
	DealID       int64
	Stage        string
	Value        float64
	ActivityDate time.Time
}

// NewDealsMonth is one row of the new-deals table: deals whose earliest
// recorded activity falls in the month.
type NewDealsMonth struct {
	Month          string  `json:"month"`
	Count          int     `json:"count"`
	TotalPotential float64 `json:"totalPotential"`
}
