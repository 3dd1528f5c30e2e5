// Package export serialises dashboard aggregates for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/salespulse/salespulse/internal/leaderboard"
	"github.com/salespulse/salespulse/internal/overview"
)

// WriteSummaryCSV serialises the overview card metrics to CSV.
func WriteSummaryCSV(w io.Writer, summary overview.Summary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Total Revenue", formatFloat(summary.TotalRevenue)},
		{"Total Target", formatFloat(summary.TotalTarget)},
		{"Completion Percentage", formatFloat(summary.CompletionPercentage)},
		{"Avg Deal Size", formatFloat(summary.AvgDealSize)},
	}
	if summary.BestPerformer != nil {
		records = append(records,
			[]string{"Best Performer", summary.BestPerformer.Name},
			[]string{"Best Performer Conversion", formatFloat(summary.BestPerformer.ConversionRate)},
		)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLeaderboardCSV emits the ranked rep rows as CSV.
func WriteLeaderboardCSV(w io.Writer, rows []leaderboard.Row) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{
		"Rep", "Revenue", "Target", "Target %", "Total Deals", "Won Deals",
		"Conversion Rate", "Avg Deal Size", "High Risk Deals", "Risk Ratio", "Score",
	}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Name,
			formatFloat(row.Revenue),
			formatFloat(row.Target),
			formatFloat(row.TargetPercentage),
			strconv.Itoa(row.TotalDeals),
			strconv.Itoa(row.ClosedWonDeals),
			formatFloat(row.ConversionRate),
			formatFloat(row.AvgDealSize),
			strconv.Itoa(row.HighRiskDeals),
			formatFloat(row.RiskRatio),
			strconv.Itoa(row.PerformanceScore),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDashboardCSV concatenates the overview and leaderboard sections into a
// single download, separated by a blank record.
func WriteDashboardCSV(w io.Writer, summary overview.Summary, rows []leaderboard.Row) error {
	if err := WriteSummaryCSV(w, summary); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return WriteLeaderboardCSV(w, rows)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
