package domain

import "fmt"

// monthLabels maps zero-indexed issue months to three-letter labels.
var monthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthLabel returns the three-letter label for a zero-indexed issue month,
// or "" when the index is out of range.
func MonthLabel(issueMonth0 int) string {
	if issueMonth0 < 0 || issueMonth0 > 11 {
		return ""
	}
	return monthLabels[issueMonth0]
}

// AnnotateParams carries the query context needed to derive trigger columns
// from a flattened export table.
type AnnotateParams struct {
	Predictor         string // series column holding the forecast value
	IssueMonth0       int
	Frequency         int
	ThresholdProtocol float64
	BadYears          []int // years of interest; all others are dropped
	DesignToolURL     string
}

// AnnotateRecords joins the export time series with its scalar metrics and
// derives the trigger columns. Rows outside BadYears are filtered out.
func AnnotateRecords(table ExportTable, p AnnotateParams) []TriggerRecord {
	threshold := table.Metrics.Threshold()
	counts := table.Metrics.Counts()

	badYears := make(map[int]bool, len(p.BadYears))
	for _, y := range p.BadYears {
		badYears[y] = true
	}

	records := make([]TriggerRecord, 0, len(table.Series))
	for _, row := range table.Series {
		year := row.Int("year")
		if !badYears[year] {
			continue
		}
		forecast := row.Float(p.Predictor)

		records = append(records, TriggerRecord{
			Year:                      year,
			Frequency:                 fmt.Sprintf("%d%%", p.Frequency),
			IssueMonth:                MonthLabel(p.IssueMonth0),
			Forecast:                  forecast,
			ForecastThreshold:         threshold,
			TriggerDifference:         forecast - threshold,
			ForecastAccuracy:          table.Metrics.Accuracy(),
			Triggered:                 forecast > threshold,
			AdjustedForecastThreshold: threshold + p.ThresholdProtocol,
			ThresholdProtocol:         p.ThresholdProtocol,
			// Matches the upstream maproom tool: the adjusted flag still
			// compares against the base threshold.
			TriggeredAdjusted: forecast > threshold,
			ActInVain:         counts.ActInVain,
			FailToAct:         counts.FailToAct,
			WorthyAction:      counts.WorthyAction,
			WorthyInaction:    counts.WorthyInaction,
			DesignToolURL:     p.DesignToolURL,
		})
	}
	return records
}
