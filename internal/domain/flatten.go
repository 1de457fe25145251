package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// metricNames maps flattened scalar keys to their display names.
var metricNames = map[string]string{
	"threshold":             "Forecast Threshold",
	"skill.accuracy":        "Forecast Accuracy",
	"skill.act_in_vain":     "Act in Vain",
	"skill.fail_to_act":     "Fail to Act",
	"skill.worthy_action":   "Worthy Action",
	"skill.worthy_inaction": "Worthy Inaction",
}

// SeriesRow is one flattened element of the export time series. Nested keys
// are joined with "_"; values keep their JSON types.
type SeriesRow map[string]any

// Float returns the named column as a float64, or 0 if absent or non-numeric.
// JSON numbers always decode as float64 here.
func (r SeriesRow) Float(column string) float64 {
	v, _ := r[column].(float64)
	return v
}

// Int returns the named column truncated to an int.
func (r SeriesRow) Int(column string) int {
	return int(r.Float(column))
}

// ScalarMetrics holds the per-query scalar values of an export payload,
// keyed by display name.
type ScalarMetrics map[string]float64

// Threshold returns the published forecast threshold.
func (m ScalarMetrics) Threshold() float64 { return m["Forecast Threshold"] }

// Accuracy returns the forecast accuracy in [0, 1].
func (m ScalarMetrics) Accuracy() float64 { return m["Forecast Accuracy"] }

// Counts returns the four skill counts.
func (m ScalarMetrics) Counts() SkillCounts {
	return SkillCounts{
		WorthyAction:   m["Worthy Action"],
		ActInVain:      m["Act in Vain"],
		WorthyInaction: m["Worthy Inaction"],
		FailToAct:      m["Fail to Act"],
	}
}

// ExportTable is the flattened form of one export payload: the forecast time
// series plus the scalar metric sidecar.
type ExportTable struct {
	Series  []SeriesRow
	Metrics ScalarMetrics
}

// FlattenExport normalizes a raw export payload into tabular form. The shape
// of each top-level value decides its column kind: arrays become series rows
// (elements flattened with "_"), objects become dotted scalar metrics, and
// bare scalars become metrics directly. Mixed shapes inside one array are an
// error rather than a silent misclassification.
func FlattenExport(raw []byte) (ExportTable, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ExportTable{}, fmt.Errorf("parse export payload: %w", err)
	}

	table := ExportTable{Metrics: ScalarMetrics{}}

	// Deterministic key order keeps series-column collisions reproducible.
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch value := payload[key].(type) {
		case []any:
			rows, err := flattenSeries(key, value)
			if err != nil {
				return ExportTable{}, err
			}
			table.Series = mergeSeries(table.Series, rows)
		case map[string]any:
			collectScalars(table.Metrics, key, value)
		default:
			putMetric(table.Metrics, key, value)
		}
	}

	return table, nil
}

// flattenSeries explodes one array column into rows, flattening each element
// object with "_"-joined keys.
func flattenSeries(column string, elements []any) ([]SeriesRow, error) {
	rows := make([]SeriesRow, 0, len(elements))
	for i, el := range elements {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("export column %q: element %d is not an object", column, i)
		}
		row := SeriesRow{}
		flattenInto(row, "", "_", obj)
		rows = append(rows, row)
	}
	return rows, nil
}

// mergeSeries aligns rows from a second array column with existing rows by
// index, so two parallel series produce one joined table.
func mergeSeries(existing, incoming []SeriesRow) []SeriesRow {
	if existing == nil {
		return incoming
	}
	for i, row := range incoming {
		if i >= len(existing) {
			existing = append(existing, row)
			continue
		}
		for k, v := range row {
			existing[i][k] = v
		}
	}
	return existing
}

// collectScalars flattens a nested object into dotted metric keys.
func collectScalars(metrics ScalarMetrics, prefix string, obj map[string]any) {
	flat := map[string]any{}
	flattenInto(flat, prefix, ".", obj)
	for k, v := range flat {
		putMetric(metrics, k, v)
	}
}

// flattenInto writes obj's leaves into dst, joining nested keys with sep.
func flattenInto(dst map[string]any, prefix, sep string, obj map[string]any) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + sep + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(dst, key, sep, nested)
			continue
		}
		dst[key] = v
	}
}

// putMetric records a numeric scalar under its display name. Non-numeric
// scalars (e.g. string mode labels echoed by the API) are dropped.
func putMetric(metrics ScalarMetrics, key string, value any) {
	f, ok := value.(float64)
	if !ok {
		return
	}
	name := key
	if display, known := metricNames[key]; known {
		name = display
	}
	metrics[name] = f
}
