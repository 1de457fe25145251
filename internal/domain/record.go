package domain

import (
	"fmt"
	"time"
)

// TriggerRecord is one annotated row of a trigger table: a single year of a
// (frequency, issue month, region) combination. Field order matches the
// column order of the analyst-facing table.
type TriggerRecord struct {
	AdminName                 string  `json:"admin_name"`
	Year                      int     `json:"year"`
	Frequency                 string  `json:"frequency"` // e.g. "30%"
	IssueMonth                string  `json:"issue_month"`
	Forecast                  float64 `json:"forecast"`
	ForecastThreshold         float64 `json:"forecast_threshold"`
	TriggerDifference         float64 `json:"trigger_difference"`
	ForecastAccuracy          float64 `json:"forecast_accuracy"` // 0–1
	Triggered                 bool    `json:"triggered"`
	AdjustedForecastThreshold float64 `json:"adjusted_forecast_threshold"`
	ThresholdProtocol         float64 `json:"threshold_protocol"`
	TriggeredAdjusted         bool    `json:"triggered_adjusted"`
	ActInVain                 float64 `json:"act_in_vain"`
	FailToAct                 float64 `json:"fail_to_act"`
	WorthyAction              float64 `json:"worthy_action"`
	WorthyInaction            float64 `json:"worthy_inaction"`
	DesignToolURL             string  `json:"design_tool_url"`
}

// SkillCounts extracts the contingency-table outcome counts from a record.
func (r TriggerRecord) SkillCounts() SkillCounts {
	return SkillCounts{
		WorthyAction:   r.WorthyAction,
		ActInVain:      r.ActInVain,
		WorthyInaction: r.WorthyInaction,
		FailToAct:      r.FailToAct,
	}
}

// SkillCounts holds the four forecast-outcome counts.
type SkillCounts struct {
	WorthyAction   float64
	ActInVain      float64
	WorthyInaction float64
	FailToAct      float64
}

// Total returns the sum of all four outcome counts.
func (s SkillCounts) Total() float64 {
	return s.WorthyAction + s.ActInVain + s.WorthyInaction + s.FailToAct
}

// AdminRegion is one administrative region at a given level: a key unique
// within the level and a display label.
type AdminRegion struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TableKey identifies one trigger table within a collection.
type TableKey struct {
	Frequency  int
	Mode       int
	IssueMonth int
	RegionKey  string
}

// TriggerTable is the annotated record set for one table key.
type TriggerTable struct {
	Key     TableKey
	Name    string // deterministic, e.g. output_freq_30_mode_0_month_2_region_TD_table
	Records []TriggerRecord
	BuiltAt time.Time
}

// NewTriggerTable assembles a table and stamps it from the active clock.
func NewTriggerTable(key TableKey, records []TriggerRecord) TriggerTable {
	return TriggerTable{
		Key:     key,
		Name:    key.TableName(),
		Records: records,
		BuiltAt: clock.Now(),
	}
}

// TableName renders the deterministic table name for this key.
func (k TableKey) TableName() string {
	return fmt.Sprintf("output_freq_%d_mode_%d_month_%d_region_%s_table",
		k.Frequency, k.Mode, k.IssueMonth, k.RegionKey)
}

// AdminTableName renders the admin-level group name for a mode,
// e.g. "admin0_tables".
func AdminTableName(mode int) string {
	return fmt.Sprintf("admin%d_tables", mode)
}

// TableCollection groups trigger tables under an admin-level name
// (e.g. "admin0_tables"). Immutable once the builder returns it.
type TableCollection struct {
	AdminName string
	Tables    map[TableKey]TriggerTable
}

// DecisionRecord is a TriggerRecord extended with decision-value metrics.
// Computed per risk-tolerance value and never persisted.
type DecisionRecord struct {
	TriggerRecord

	EV     float64 `json:"ev"`
	EVNorm float64 `json:"ev_norm"`
	Risk   float64 `json:"risk"`
	Reward float64 `json:"reward"`
	RARoP  float64 `json:"rarop"`
}
