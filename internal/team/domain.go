// Package team rolls up per-manager performance. Two scoring strategies
// coexist on purpose: the target-threshold variant and the revenue-trend
// variant feed different call sites with numerically different results, so
// they must stay independently invokable and must not share thresholds.
package team

// Variant A: momentum from target attainment, score weighted like the
// leaderboard.
const (
	momentumAcceleratingMin = 110.0
	momentumImprovingMin    = 90.0
	momentumDecliningMax    = 70.0

	riskHighMin   = 0.4
	riskMediumMin = 0.2

	scoreTargetWeightA     = 0.5
	scoreConversionWeightA = 1.5
	scoreRiskWeightA       = 0.2
)

// Variant B: momentum from the last-30-days revenue trend, score blended
// from four capped sub-scores. Tuning constants preserved as named values.
const (
	trendAcceleratingMin = 20.0
	trendImprovingMin    = 5.0
	trendDecliningMax    = -10.0

	scoreTargetWeightB     = 0.3
	scoreConversionWeightB = 0.25
	scoreEfficiencyWeightB = 0.2
	scoreMomentumWeightB   = 0.25

	// Deals-per-rep scale that maps efficiency onto a 0-100 sub-score.
	efficiencyScoreScale = 10.0

	momentumScoreAccelerating = 100.0
	momentumScoreImproving    = 75.0
	momentumScoreStable       = 50.0
	momentumScoreDeclining    = 25.0

	trendWindowDays = 30
)

// Stage literal treated as won by both rollup variants.
const closedWonLiteral = "closed_won"

// Rollup is the variant A payload.
type Rollup struct {
	ManagerID        int64   `json:"managerId"`
	ManagerName      string  `json:"managerName"`
	TeamSize         int     `json:"teamSize"`
	Revenue          float64 `json:"revenue"`
	Target           float64 `json:"target"`
	TargetPercentage float64 `json:"targetPercentage"`
	TotalDeals       int     `json:"totalDeals"`
	ConversionRate   float64 `json:"conversionRate"`
	HighRiskDeals    int     `json:"highRiskDeals"`
	Momentum         string  `json:"momentum"`
	RiskLevel        string  `json:"riskLevel"`
	Efficiency       float64 `json:"efficiency"`
	PerformanceScore int     `json:"performanceScore"`
}

// TrendRollup is the variant B payload. Momentum labels are lowercase here;
// the two variants never shared a label set.
type TrendRollup struct {
	ManagerID        int64   `json:"managerId"`
	ManagerName      string  `json:"managerName"`
	TeamSize         int     `json:"teamSize"`
	Revenue          float64 `json:"revenue"`
	Target           float64 `json:"target"`
	TargetPercentage float64 `json:"targetPercentage"`
	TotalDeals       int     `json:"totalDeals"`
	ConversionRate   float64 `json:"conversionRate"`
	Efficiency       float64 `json:"efficiency"`
	RevenueLast30    float64 `json:"revenueLast30"`
	RevenuePrior30   float64 `json:"revenuePrior30"`
	GrowthRate       float64 `json:"growthRate"`
	Momentum         string  `json:"momentum"`
	PerformanceScore int     `json:"performanceScore"`
}

// RepAmount is a per-rep monetary aggregate row.
type RepAmount struct {
	RepID  int64
	Amount float64
}

// Deal is the snapshot slice consumed by the rollups.
type Deal struct {
	RepID    int64
	Stage    string
	HighRisk string
}

func momentumFromTarget(targetPct float64) string {
	switch {
	case targetPct >= momentumAcceleratingMin:
		return "Accelerating"
	case targetPct >= momentumImprovingMin:
		return "Improving"
	case targetPct < momentumDecliningMax:
		return "Declining"
	default:
		return "Stable"
	}
}

func riskLevel(ratio float64) string {
	switch {
	case ratio > riskHighMin:
		return "High"
	case ratio > riskMediumMin:
		return "Medium"
	default:
		return "Low"
	}
}

func momentumFromGrowth(growthPct float64) string {
	switch {
	case growthPct > trendAcceleratingMin:
		return "accelerating"
	case growthPct > trendImprovingMin:
		return "improving"
	case growthPct < trendDecliningMax:
		return "declining"
	default:
		return "stable"
	}
}

func momentumScore(label string) float64 {
	switch label {
	case "accelerating":
		return momentumScoreAccelerating
	case "improving":
		return momentumScoreImproving
	case "declining":
		return momentumScoreDeclining
	default:
		return momentumScoreStable
	}
}
