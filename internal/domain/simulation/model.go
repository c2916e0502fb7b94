// Package simulation runs learner sessions against authored case variants:
// it serializes intervention submissions, drives the vitals engine, tracks
// the applied-intervention ledger, and decides stage and case completion.
package simulation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/casebank"
	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/vitals"
)

// CompletionState is the session's position in the stage state machine.
type CompletionState string

const (
	// StateAwaitingInterventions means the current stage's required set is
	// not yet satisfied.
	StateAwaitingInterventions CompletionState = "awaiting_interventions"
	// StateCaseComplete is terminal: the final stage's required set was
	// satisfied.
	StateCaseComplete CompletionState = "case_complete"
)

// AppliedIntervention is one ledger entry. Name holds the canonical
// intervention name after synonym resolution; Submitted preserves what the
// learner actually entered. Requirement checks are scoped by Stage.
type AppliedIntervention struct {
	ID        uuid.UUID                     `json:"id"`
	Name      string                        `json:"name"`
	Submitted string                        `json:"submitted,omitempty"`
	Stage     int                           `json:"stage"`
	Category  casebank.InterventionCategory `json:"category"`
	Success   bool                          `json:"success"`
	AppliedAt time.Time                     `json:"appliedAt"`
}

// Session is the runtime state of one learner's run through a case. It is
// owned by the service's in-process registry and never persisted by the
// engine itself.
type Session struct {
	ID          uuid.UUID       `json:"id"`
	CaseID      string          `json:"caseId"`
	LearnerID   string          `json:"learnerId"`
	StageNumber int             `json:"stageNumber"`
	Vitals      vitals.Vitals   `json:"vitals"`
	Ledger      []AppliedIntervention `json:"ledger"`
	State       CompletionState `json:"state"`
	StartedAt   time.Time       `json:"startedAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// InvalidInterventionError reports a submission outside the case's
// intervention vocabulary. The session is rejected before any mutation.
type InvalidInterventionError struct {
	Name   string
	CaseID string
}

func (e *InvalidInterventionError) Error() string {
	return fmt.Sprintf("intervention %q is not part of case %s", e.Name, e.CaseID)
}

// ContentConfigurationError reports authored content the machine cannot
// act on, such as a stage with no required interventions. Logged and
// surfaced, never fatal to the session.
type ContentConfigurationError struct {
	CaseID string
	Stage  int
	Reason string
}

func (e *ContentConfigurationError) Error() string {
	return fmt.Sprintf("case %s stage %d misconfigured: %s", e.CaseID, e.Stage, e.Reason)
}
