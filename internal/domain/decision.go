package domain

import (
	"fmt"
	"math"
)

// zeroToleranceRiskPenalty is subtracted from Reward when the risk tolerance
// is exactly zero, standing in for an unbounded Risk/tolerance term.
const zeroToleranceRiskPenalty = 10

// DecisionCoefficients is the linear value/cost model applied to the four
// skill counts when computing expected value.
type DecisionCoefficients struct {
	ValueTruePositive float64 // value of Worthy Action
	CostFalsePositive float64 // cost of Act in Vain
	ValueTrueNegative float64 // value of Worthy Inaction
	CostFalseNegative float64 // cost of Fail to Act
}

// DecisionValues computes EV, normalized EV, Risk, Reward, and RARoP for
// every record. The risk tolerance must be in [0, 1]: values in (0, 1] scale
// the risk term, and exactly 0 applies a flat penalty instead. Results are
// ephemeral and recomputed on every call.
//
// Degenerate inputs stay defined rather than failing: an all-equal EV batch
// normalizes to 0 for every row, and a row whose four counts are all zero has
// NaN Risk and Reward.
func DecisionValues(records []TriggerRecord, c DecisionCoefficients, riskTolerance float64) ([]DecisionRecord, error) {
	if riskTolerance < 0 || riskTolerance > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidRiskTolerance, riskTolerance)
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := make([]DecisionRecord, len(records))
	evMin, evMax := math.Inf(1), math.Inf(-1)

	for i, r := range records {
		s := r.SkillCounts()
		ev := s.WorthyAction*c.ValueTruePositive +
			s.ActInVain*c.CostFalsePositive +
			s.WorthyInaction*c.ValueTrueNegative +
			s.FailToAct*c.CostFalseNegative
		evMin = math.Min(evMin, ev)
		evMax = math.Max(evMax, ev)

		total := s.Total()
		risk := (s.ActInVain + s.FailToAct) / total
		reward := (s.WorthyAction + s.WorthyInaction) / total

		out[i] = DecisionRecord{
			TriggerRecord: r,
			EV:            ev,
			Risk:          risk,
			Reward:        reward,
			RARoP:         rarop(reward, risk, riskTolerance),
		}
	}

	evRange := evMax - evMin
	for i := range out {
		if evRange == 0 {
			out[i].EVNorm = 0
			continue
		}
		out[i].EVNorm = (out[i].EV - evMin) / evRange
	}

	return out, nil
}

func rarop(reward, risk, riskTolerance float64) float64 {
	if riskTolerance == 0 {
		return reward - zeroToleranceRiskPenalty
	}
	return reward - risk/riskTolerance
}

// SkillScores holds derived classification metrics for one set of counts.
type SkillScores struct {
	Accuracy    float64
	Sensitivity float64
	Specificity float64
}

// ComputeSkillScores derives accuracy, sensitivity, and specificity from the
// contingency counts. Ratios with a zero denominator are NaN.
func ComputeSkillScores(s SkillCounts) SkillScores {
	return SkillScores{
		Accuracy:    (s.WorthyAction + s.WorthyInaction) / s.Total(),
		Sensitivity: s.WorthyAction / (s.WorthyAction + s.FailToAct),
		Specificity: s.WorthyInaction / (s.WorthyInaction + s.ActInVain),
	}
}
