package simulation

// Stage completion is a pure predicate over the authored required list and
// the session ledger. Score, elapsed time and vitals trajectory never
// participate: only successful ledger entries for the current stage count.

import (
	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/casebank"
)

// stageSatisfied reports whether every required intervention of the stage
// has a successful ledger entry scoped to that stage. A stage with an empty
// required list never satisfies: that is authored-content misconfiguration,
// and automatic completion would let a learner pass without doing anything.
func stageSatisfied(stage *casebank.Stage, ledger []AppliedIntervention) bool {
	if len(stage.Required) == 0 {
		return false
	}
	for _, required := range stage.Required {
		if !hasSuccess(ledger, required, stage.Number) {
			return false
		}
	}
	return true
}

// hasSuccess reports whether the ledger holds a successful entry for the
// exact canonical name within the given stage. Entries from other stages
// never match, so an identically-named requirement in a later stage must be
// re-performed.
func hasSuccess(ledger []AppliedIntervention, name string, stage int) bool {
	for i := range ledger {
		e := &ledger[i]
		if e.Stage == stage && e.Name == name && e.Success {
			return true
		}
	}
	return false
}

// nextRequired returns the first required intervention of an ordered stage
// that has no successful ledger entry yet, and true when one remains.
func nextRequired(stage *casebank.Stage, ledger []AppliedIntervention) (string, bool) {
	for _, required := range stage.Required {
		if !hasSuccess(ledger, required, stage.Number) {
			return required, true
		}
	}
	return "", false
}

// interventionSucceeds decides the Success flag for a new ledger entry. An
// intervention known to the stage succeeds unless the stage is ordered and
// a different required intervention is still due first; interventions the
// stage does not list are recorded as unsuccessful context (they can still
// be examined for scoring, but never gate completion).
func interventionSucceeds(stage *casebank.Stage, ledger []AppliedIntervention, name string) bool {
	category := stage.CategoryOf(name)
	if category == casebank.CategoryUnknown {
		return false
	}
	if stage.Ordered && category == casebank.CategoryRequired {
		due, ok := nextRequired(stage, ledger)
		if ok && due != name {
			return false
		}
	}
	return true
}
