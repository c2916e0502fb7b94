package vitals

import (
	"fmt"
	"math"
)

// ClinicalStatus is the banded stability assessment derived from the
// severity score.
type ClinicalStatus string

const (
	StatusStable     ClinicalStatus = "stable"
	StatusConcerning ClinicalStatus = "concerning"
	StatusCritical   ClinicalStatus = "critical"
	StatusEmergent   ClinicalStatus = "emergent"
)

// Classification is a derived view of the current vitals. It is recomputed
// on demand and never stored.
type Classification struct {
	Status          ClinicalStatus `json:"status"`
	Priority        int            `json:"priority"` // 1 (emergent) .. 4 (stable)
	Recommendations []string       `json:"recommendations"`
}

// SeverityScoreCap is the maximum severity score; per-field contributions
// are summed and then capped here.
const SeverityScoreCap = 20

// ApplyEffects returns a new snapshot with the effect's deltas added to the
// corresponding fields and each result clamped to its clinical bound. Fields
// absent from the effect are unchanged. A consciousness level present on the
// effect replaces the current one. CapillaryRefill deltas are applied from
// the current value, or from zero when the case does not yet track it.
func ApplyEffects(v Vitals, e Effect) Vitals {
	out := v
	for _, f := range Fields() {
		delta, ok := e.Deltas[f]
		if !ok || delta == 0 {
			continue
		}
		current, tracked := out.Get(f)
		if f == FieldCapillaryRefill && !tracked {
			current = 0
		}
		out = out.withField(f, clamp(current+delta, BoundFor(f)))
	}
	if e.Consciousness != nil {
		out.Consciousness = *e.Consciousness
	}
	return out
}

// Tick advances the vitals along a deterioration curve for deltaSeconds.
// Each field's per-minute rate is scaled to the elapsed time, recorded in
// the returned rate map, added, and clamped on the side the rate is pushing
// toward: a positive rate clamps only at the field's maximum, a negative
// rate only at its minimum. A curve authored to raise a value can therefore
// never floor it, and vice versa. Deterministic for identical inputs.
func Tick(v Vitals, curve Curve, deltaSeconds float64) (Vitals, map[Field]float64) {
	out := v
	applied := make(map[Field]float64, len(curve.Rates))
	for _, f := range Fields() {
		rate, ok := curve.Rates[f]
		if !ok || rate == 0 {
			continue
		}
		current, tracked := out.Get(f)
		if f == FieldCapillaryRefill && !tracked {
			current = 0
		}
		delta := rate * deltaSeconds / 60
		applied[f] = delta
		out = out.withField(f, clampDirectional(current+delta, rate, BoundFor(f)))
	}
	return out, applied
}

// SeverityScore sums fixed per-field point contributions and caps the total
// at SeverityScoreCap. Breakpoints are evaluated independently; a single
// field contributes at most its highest matching tier.
func SeverityScore(v Vitals) int {
	score := 0

	switch {
	case v.HeartRate < 60:
		score += 2
	case v.HeartRate > 180:
		score += 3
	case v.HeartRate > 160:
		score += 2
	case v.HeartRate > 140:
		score++
	}

	switch {
	case v.RespRate < 20:
		score += 2
	case v.RespRate > 60:
		score += 3
	case v.RespRate > 50:
		score += 2
	case v.RespRate > 40:
		score++
	}

	switch {
	case v.BloodPressureSys < 90:
		score += 3
	case v.BloodPressureSys < 100:
		score += 2
	case v.BloodPressureSys < 110:
		score++
	}

	switch {
	case v.SpO2 < 90:
		score += 3
	case v.SpO2 < 95:
		score++
	}

	switch {
	case v.Temperature > 40:
		score += 2
	case v.Temperature > 39:
		score++
	case v.Temperature < 36:
		score++
	}

	if v.CapillaryRefill != nil && *v.CapillaryRefill > 3 {
		score += 2
	}

	switch v.Consciousness {
	case ConsciousnessUnresponsive:
		score += 4
	case ConsciousnessLethargic:
		score += 2
	case ConsciousnessConfused:
		score++
	}

	if score > SeverityScoreCap {
		score = SeverityScoreCap
	}
	return score
}

// Classify maps the severity score to a status band and priority, with a
// base recommendation list per band and field-specific recommendations
// appended for hypoxia, hypotension and heart rate outside 60-180.
func Classify(v Vitals) Classification {
	score := SeverityScore(v)

	var c Classification
	switch {
	case score <= 3:
		c = Classification{
			Status:   StatusStable,
			Priority: 4,
			Recommendations: []string{
				"Continue routine monitoring",
				"Reassess vital signs at standard intervals",
			},
		}
	case score <= 6:
		c = Classification{
			Status:   StatusConcerning,
			Priority: 3,
			Recommendations: []string{
				"Increase monitoring frequency",
				"Notify supervising physician",
				"Prepare for escalation of care",
			},
		}
	case score <= 10:
		c = Classification{
			Status:   StatusCritical,
			Priority: 2,
			Recommendations: []string{
				"Immediate physician assessment required",
				"Continuous vital sign monitoring",
				"Prepare resuscitation equipment",
			},
		}
	default:
		c = Classification{
			Status:   StatusEmergent,
			Priority: 1,
			Recommendations: []string{
				"Activate emergency response team",
				"Begin resuscitation protocol",
				"Continuous monitoring with dedicated staff",
			},
		}
	}

	if v.SpO2 < 90 {
		c.Recommendations = append(c.Recommendations, "Administer supplemental oxygen")
	}
	if v.BloodPressureSys < 90 {
		c.Recommendations = append(c.Recommendations, "Establish vascular access and consider fluid resuscitation")
	}
	if v.HeartRate < 60 || v.HeartRate > 180 {
		c.Recommendations = append(c.Recommendations, "Initiate continuous cardiac monitoring")
	}

	return c
}

// TimeToCritical estimates, for every field with both a current value and a
// nonzero curve rate, the seconds until the field crosses its critical
// threshold along the curve. A zero rate yields +Inf: the threshold is
// never reached. Fields without a threshold or without a rate are omitted.
// Advisory only; never used to gate stage completion.
func TimeToCritical(v Vitals, curve Curve, thresholds map[Field]float64) map[Field]float64 {
	out := make(map[Field]float64)
	for f, threshold := range thresholds {
		rate, hasRate := curve.Rates[f]
		current, tracked := v.Get(f)
		if !hasRate || !tracked {
			continue
		}
		if rate == 0 {
			out[f] = math.Inf(1)
			continue
		}
		minutes := math.Abs(threshold-current) / math.Abs(rate)
		out[f] = minutes * 60
	}
	return out
}

// RangeReport is the result of a diagnostic bounds check.
type RangeReport struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateRanges checks every numeric field against its absolute bound and
// reports one warning per violation. Purely diagnostic: unlike ApplyEffects
// and Tick it neither clamps nor mutates.
func ValidateRanges(v Vitals) RangeReport {
	report := RangeReport{Valid: true}
	for _, f := range Fields() {
		val, tracked := v.Get(f)
		if !tracked {
			continue
		}
		b := BoundFor(f)
		if val < b.Min || val > b.Max {
			report.Valid = false
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s %.1f outside clinical range [%.1f, %.1f]", f, val, b.Min, b.Max))
		}
	}
	return report
}

func clamp(val float64, b Bound) float64 {
	if val < b.Min {
		return b.Min
	}
	if val > b.Max {
		return b.Max
	}
	return val
}

// clampDirectional clamps only on the side the rate pushes toward.
func clampDirectional(val, rate float64, b Bound) float64 {
	if rate > 0 && val > b.Max {
		return b.Max
	}
	if rate < 0 && val < b.Min {
		return b.Min
	}
	return val
}
