// Package casebank holds the authored simulation content: case variants,
// their staged progression, and the intervention vocabulary with per-stage
// vital effects. Content is immutable at runtime; the repository is a
// read-only lookup keyed by case id.
package casebank

import (
	"encoding/json"
	"fmt"

	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/vitals"
)

// InterventionCategory classifies how an intervention relates to a stage.
// Only "required" participates in stage completion; the rest drive guidance
// and scoring.
type InterventionCategory string

const (
	CategoryRequired InterventionCategory = "required"
	CategoryHelpful  InterventionCategory = "helpful"
	CategoryHarmful  InterventionCategory = "harmful"
	CategoryNeutral  InterventionCategory = "neutral"
	CategoryUnknown  InterventionCategory = "unknown"
)

// StageSeverity is the authored acuity of a stage.
type StageSeverity string

const (
	SeverityLow      StageSeverity = "low"
	SeverityModerate StageSeverity = "moderate"
	SeveritySevere   StageSeverity = "severe"
)

// Stage is one ordered phase of a case. Required interventions are the sole
// completion gate; helpful, harmful and neutral shape guidance only.
type Stage struct {
	Number             int                            `json:"stage"`
	Name               string                         `json:"name"`
	Severity           StageSeverity                  `json:"severity"`
	TimeToInterveneSec int                            `json:"timeToIntervene"`
	Ordered            bool                           `json:"ordered"`
	Required           []string                       `json:"requiredInterventions"`
	Helpful            []string                       `json:"helpful"`
	Harmful            []string                       `json:"harmful"`
	Neutral            []string                       `json:"neutral"`
	VitalEffects       map[string]vitals.Effect       `json:"-"`
	Curve              *vitals.Curve                  `json:"-"`
	Synonyms           map[string]string              `json:"synonyms,omitempty"`
	CriticalThresholds map[vitals.Field]float64       `json:"-"`
}

// Canonical resolves an intervention name through the stage's authored
// synonym map. Unmapped names pass through unchanged; matching downstream
// stays exact string equality against the canonical form.
func (s *Stage) Canonical(name string) string {
	if s.Synonyms != nil {
		if canonical, ok := s.Synonyms[name]; ok {
			return canonical
		}
	}
	return name
}

// CategoryOf returns the stage's classification for a canonical
// intervention name, or CategoryUnknown when the stage does not list it.
func (s *Stage) CategoryOf(name string) InterventionCategory {
	for _, n := range s.Required {
		if n == name {
			return CategoryRequired
		}
	}
	for _, n := range s.Helpful {
		if n == name {
			return CategoryHelpful
		}
	}
	for _, n := range s.Harmful {
		if n == name {
			return CategoryHarmful
		}
	}
	for _, n := range s.Neutral {
		if n == name {
			return CategoryNeutral
		}
	}
	return CategoryUnknown
}

// Vocabulary returns every intervention name the stage knows, across all
// four category sets.
func (s *Stage) Vocabulary() []string {
	out := make([]string, 0, len(s.Required)+len(s.Helpful)+len(s.Harmful)+len(s.Neutral))
	out = append(out, s.Required...)
	out = append(out, s.Helpful...)
	out = append(out, s.Harmful...)
	out = append(out, s.Neutral...)
	return out
}

// CaseVariant is one authored simulated case: a patient presentation with
// an ordered stage sequence. Read-only after load.
type CaseVariant struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	AgeYears      float64       `json:"ageYears"`
	WeightKg      float64       `json:"weightKg"`
	InitialVitals vitals.Vitals `json:"initialVitals"`
	Stages        []Stage       `json:"-"`
	Curve         *vitals.Curve `json:"-"` // case-global fallback deterioration
}

// Stage returns the stage with the given number.
func (cv *CaseVariant) Stage(number int) (*Stage, bool) {
	for i := range cv.Stages {
		if cv.Stages[i].Number == number {
			return &cv.Stages[i], true
		}
	}
	return nil, false
}

// CurveForStage returns the stage's own deterioration curve, falling back
// to the case-global curve. The zero curve means no deterioration.
func (cv *CaseVariant) CurveForStage(number int) vitals.Curve {
	if s, ok := cv.Stage(number); ok && s.Curve != nil {
		return *s.Curve
	}
	if cv.Curve != nil {
		return *cv.Curve
	}
	return vitals.Curve{}
}

// KnowsIntervention reports whether the name (after per-stage synonym
// resolution) appears in any stage's vocabulary. Used to reject submissions
// outside the case's vocabulary before any session mutation.
func (cv *CaseVariant) KnowsIntervention(name string) bool {
	for i := range cv.Stages {
		s := &cv.Stages[i]
		canonical := s.Canonical(name)
		if s.CategoryOf(canonical) != CategoryUnknown {
			return true
		}
	}
	return false
}

// LastStageNumber returns the highest stage number, or 0 for an empty case.
func (cv *CaseVariant) LastStageNumber() int {
	last := 0
	for i := range cv.Stages {
		if cv.Stages[i].Number > last {
			last = cv.Stages[i].Number
		}
	}
	return last
}

// ---------------------------------------------------------------------------
// Authored JSON decoding
// ---------------------------------------------------------------------------

// Authored content keys vital effects and curve rates by field name. The
// wire structs below accept that shape; decoding converts the string keys to
// the closed vitals.Field enum and reports, rather than silently drops,
// unknown names.

type effectDoc map[string]json.RawMessage

type curveDoc struct {
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params"`
}

type stageDoc struct {
	Stage              int                  `json:"stage"`
	Name               string               `json:"name"`
	Severity           StageSeverity        `json:"severity"`
	TimeToIntervene    int                  `json:"timeToIntervene"`
	Ordered            bool                 `json:"ordered"`
	Required           []string             `json:"requiredInterventions"`
	Helpful            []string             `json:"helpful"`
	Harmful            []string             `json:"harmful"`
	Neutral            []string             `json:"neutral"`
	VitalEffects       map[string]effectDoc `json:"vitalEffects"`
	Curve              *curveDoc            `json:"deteriorationCurve"`
	Synonyms           map[string]string    `json:"synonyms"`
	CriticalThresholds map[string]float64   `json:"criticalThresholds"`
}

type caseDoc struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	AgeYears      float64       `json:"ageYears"`
	WeightKg      float64       `json:"weightKg"`
	InitialVitals vitals.Vitals `json:"initialVitals"`
	Stages        []stageDoc    `json:"stages"`
	Curve         *curveDoc     `json:"deteriorationCurve"`
}

// DecodeCaseVariant parses authored case content. Unknown vital field names
// in effects, curves or thresholds are dropped and reported as warnings so
// the content team can fix them; they never fail the load or reach the
// engine. A malformed document is an error.
func DecodeCaseVariant(data []byte) (*CaseVariant, []string, error) {
	var doc caseDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode case content: %w", err)
	}
	if doc.ID == "" {
		return nil, nil, fmt.Errorf("case content missing id")
	}

	var warnings []string
	cv := &CaseVariant{
		ID:            doc.ID,
		Name:          doc.Name,
		Category:      doc.Category,
		AgeYears:      doc.AgeYears,
		WeightKg:      doc.WeightKg,
		InitialVitals: doc.InitialVitals,
	}
	if doc.Curve != nil {
		cv.Curve = decodeCurve(doc.ID, *doc.Curve, &warnings)
	}

	for _, sd := range doc.Stages {
		stage := Stage{
			Number:             sd.Stage,
			Name:               sd.Name,
			Severity:           sd.Severity,
			TimeToInterveneSec: sd.TimeToIntervene,
			Ordered:            sd.Ordered,
			Required:           sd.Required,
			Helpful:            sd.Helpful,
			Harmful:            sd.Harmful,
			Neutral:            sd.Neutral,
			Synonyms:           sd.Synonyms,
		}
		if sd.Curve != nil {
			stage.Curve = decodeCurve(doc.ID, *sd.Curve, &warnings)
		}
		if len(sd.VitalEffects) > 0 {
			stage.VitalEffects = make(map[string]vitals.Effect, len(sd.VitalEffects))
			for intervention, ed := range sd.VitalEffects {
				effect, effWarnings := decodeEffect(ed)
				for _, w := range effWarnings {
					warnings = append(warnings, fmt.Sprintf("case %s stage %d %q: %s", doc.ID, sd.Stage, intervention, w))
				}
				stage.VitalEffects[intervention] = effect
			}
		}
		if len(sd.CriticalThresholds) > 0 {
			stage.CriticalThresholds = make(map[vitals.Field]float64, len(sd.CriticalThresholds))
			for name, threshold := range sd.CriticalThresholds {
				f, ok := vitals.ParseField(name)
				if !ok {
					warnings = append(warnings, fmt.Sprintf("case %s stage %d: unknown threshold field %q", doc.ID, sd.Stage, name))
					continue
				}
				stage.CriticalThresholds[f] = threshold
			}
		}
		cv.Stages = append(cv.Stages, stage)
	}

	return cv, warnings, nil
}

func decodeCurve(caseID string, doc curveDoc, warnings *[]string) *vitals.Curve {
	curve := &vitals.Curve{Name: doc.Name, Rates: make(map[vitals.Field]float64, len(doc.Params))}
	for name, rate := range doc.Params {
		f, ok := vitals.ParseField(name)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("case %s curve %q: unknown vital field %q", caseID, doc.Name, name))
			continue
		}
		curve.Rates[f] = rate
	}
	return curve
}

func decodeEffect(doc effectDoc) (vitals.Effect, []string) {
	effect := vitals.Effect{Deltas: make(map[vitals.Field]float64)}
	var warnings []string
	for name, raw := range doc {
		if name == "consciousness" {
			var level vitals.ConsciousnessLevel
			if err := json.Unmarshal(raw, &level); err != nil {
				warnings = append(warnings, fmt.Sprintf("consciousness effect is not a string: %v", err))
				continue
			}
			effect.Consciousness = &level
			continue
		}
		f, ok := vitals.ParseField(name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown vital field %q", name))
			continue
		}
		var delta float64
		if err := json.Unmarshal(raw, &delta); err != nil {
			warnings = append(warnings, fmt.Sprintf("effect on %q is not numeric: %v", name, err))
			continue
		}
		effect.Deltas[f] = delta
	}
	return effect, warnings
}

// Validate checks a decoded case for content configuration problems: no
// stages, a stage with an empty required list, or duplicate stage numbers.
// Problems are reported, not fatal; a misconfigured stage simply can never
// complete (the session machine refuses automatic completion for it).
func (cv *CaseVariant) Validate() []string {
	var problems []string
	if len(cv.Stages) == 0 {
		problems = append(problems, fmt.Sprintf("case %s has no stages", cv.ID))
		return problems
	}
	seen := make(map[int]bool, len(cv.Stages))
	for i := range cv.Stages {
		s := &cv.Stages[i]
		if len(s.Required) == 0 {
			problems = append(problems, fmt.Sprintf("case %s stage %d has no required interventions", cv.ID, s.Number))
		}
		if seen[s.Number] {
			problems = append(problems, fmt.Sprintf("case %s has duplicate stage number %d", cv.ID, s.Number))
		}
		seen[s.Number] = true
	}
	return problems
}
