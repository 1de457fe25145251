// Package domain models IRI fbfmaproom forecast-trigger data.
//
// # Data Source
//
// Trigger data comes from the IRI Data Library's fbfmaproom2 API
// (https://iridl.ldeo.columbia.edu/fbfmaproom2/). A maproom identifies one
// forecast product and country configuration; its export endpoint returns,
// per (season, issue month, frequency, region) query, a JSON document with a
// forecast time series plus skill metrics for the configured trigger.
//
// # Export Payload Conventions
//
// Top-level keys fall into three shapes:
//
//	array-valued  → the forecast time series, one object per year. Element
//	                keys are flattened with "_" when nested. The predictor
//	                column is named by the maproom (e.g. "pnep").
//	object-valued → grouped scalar metrics, flattened with "." (e.g.
//	                "skill.accuracy").
//	scalar        → standalone metrics such as "threshold".
//
// Scalar metric keys map to display names via a fixed dictionary:
//
//	threshold             → Forecast Threshold
//	skill.accuracy        → Forecast Accuracy
//	skill.act_in_vain     → Act in Vain
//	skill.fail_to_act     → Fail to Act
//	skill.worthy_action   → Worthy Action
//	skill.worthy_inaction → Worthy Inaction
//
// # Trigger Semantics
//
// A trigger fires when the forecast value exceeds the maproom's threshold.
// Every record maintains two invariants:
//
//	TriggerDifference = Forecast − ForecastThreshold
//	Triggered         ⇔ Forecast > ForecastThreshold
//
// The threshold protocol is a country-specific numeric offset applied on top
// of the published threshold, producing AdjustedForecastThreshold.
//
// # Skill Counts
//
// The four contingency-table outcomes characterize forecast performance:
//
//	Worthy Action   — triggered and the year was bad (true positive)
//	Act in Vain     — triggered, year was fine    (false positive)
//	Worthy Inaction — no trigger, year was fine   (true negative)
//	Fail to Act     — no trigger, year was bad    (false negative)
//
// Decision-value metrics (EV, Risk, Reward, RARoP) are linear and ratio
// aggregates over these counts; see [DecisionValues].
//
// # Issue Months
//
// Issue months are zero-indexed in the API (0 = Jan … 11 = Dec) and rendered
// as three-letter labels on records.
package domain
