// Package reputation computes the slow-moving per-identity trust score from
// aggregate event history. It is a pure read model: callers supply the
// pre-aggregated signals and persist the result themselves.
package reputation

import (
	"math"
	"strings"
)

// Label is the qualitative tier shown next to a score.
type Label string

const (
	LabelTrusted        Label = "Trusted"
	LabelLimitedHistory Label = "Limited history"
	LabelWarning        Label = "Warning"
	LabelNotProtected   Label = "Not protected"
)

// LabelForScore maps a score in [0,1] to its tier.
func LabelForScore(score float64) Label {
	switch {
	case score >= 0.75:
		return LabelTrusted
	case score >= 0.5:
		return LabelLimitedHistory
	case score >= 0.25:
		return LabelWarning
	default:
		return LabelNotProtected
	}
}

// Details is one recomputed reputation snapshot. Never cached: every request
// recomputes from current aggregates to avoid stale-score bugs.
type Details struct {
	Score       float64 `json:"score"`
	Label       Label   `json:"label"`
	Explanation string  `json:"explanation"`
}

// Tunable policy constants. These are fixed product decisions, not derived
// values.
const (
	baseScore       = 0.4
	ageHorizonDays  = 180
	ageBoostMax     = 0.25
	weightDivisor   = 50
	weightBoostCap  = 0.4
	inactivePenalty = 0.4
)

// Compute derives reputation details from an identity's age in days, the sum
// of its event weights, and its active flag.
//
// The score is rounded to four decimal places before the final clamp so that
// persisted values are stable across recomputations.
func Compute(ageDays float64, totalWeight float64, active bool) Details {
	if ageDays < 0 {
		ageDays = 0
	}

	ageBoost := Clamp(ageDays/ageHorizonDays, 0, 1) * ageBoostMax
	activityBoost := Clamp(totalWeight/weightDivisor, -weightBoostCap, weightBoostCap)
	penalty := 0.0
	if !active {
		penalty = inactivePenalty
	}

	raw := baseScore + ageBoost + activityBoost - penalty
	score := Clamp(round4(raw), 0, 1)

	label := LabelForScore(score)
	if !active {
		// Inactive identities are never presented as protected, regardless
		// of the numeric score.
		label = LabelNotProtected
	}

	return Details{
		Score:       score,
		Label:       label,
		Explanation: explain(ageDays, totalWeight, active),
	}
}

// explain assembles the human-readable summary from independent phrase
// fragments keyed on age and weight buckets. Fragment order is stable.
func explain(ageDays float64, totalWeight float64, active bool) string {
	if !active {
		return "This Identik Name is not currently active."
	}

	var parts []string

	if ageDays < 14 {
		parts = append(parts, "This Identik Name is new and still building history.")
	} else if ageDays > 180 {
		parts = append(parts, "This Identik Name has been active for quite a while.")
	}

	if totalWeight > 5 {
		parts = append(parts, "Recent photo checks look healthy.")
	} else if totalWeight < -5 {
		parts = append(parts, "We detected several warning events.")
	}

	if len(parts) == 0 {
		parts = append(parts, "This Identik Name has a steady reputation so far.")
	}

	return strings.Join(parts, " ")
}

// Clamp bounds value to [min, max].
func Clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
