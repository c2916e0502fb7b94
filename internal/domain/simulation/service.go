package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/casebank"
	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/evidence"
	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/vitals"
	"github.com/anairr18/pediasignal-pilot-sub002/internal/platform/telemetry"
)

var (
	// ErrSessionNotFound is returned for unknown or ended session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionComplete is returned when a mutation targets a session
	// whose case has already completed.
	ErrSessionComplete = errors.New("session already complete")
)

// TelemetryEmitter is the fire-and-forget sink for completion events.
type TelemetryEmitter interface {
	Emit(ev telemetry.Event) bool
}

// DefaultGuidanceTimeout bounds the evidence gateway call when no timeout
// is configured.
const DefaultGuidanceTimeout = 1500 * time.Millisecond

// Service owns the in-process session registry and coordinates the vitals
// engine, stage machine, evidence gateway and telemetry emitter. Mutations
// against one session are serialized by a per-session lock; distinct
// sessions proceed in parallel.
type Service struct {
	cases           casebank.Repository
	gateway         evidence.Gateway
	emitter         TelemetryEmitter
	logger          zerolog.Logger
	guidanceTimeout time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionSlot
}

type sessionSlot struct {
	mu      sync.Mutex
	session *Session
	variant *casebank.CaseVariant
	// stages already reported as misconfigured, to avoid log spam on
	// every submission
	reportedBadStages map[int]bool
}

func NewService(cases casebank.Repository, gateway evidence.Gateway, emitter TelemetryEmitter, logger zerolog.Logger, guidanceTimeout time.Duration) *Service {
	if guidanceTimeout <= 0 {
		guidanceTimeout = DefaultGuidanceTimeout
	}
	return &Service{
		cases:           cases,
		gateway:         gateway,
		emitter:         emitter,
		logger:          logger,
		guidanceTimeout: guidanceTimeout,
		sessions:        make(map[uuid.UUID]*sessionSlot),
	}
}

// StartSession creates a session over the case variant's initial vitals,
// positioned at the first stage. Content configuration problems are logged
// here once; they block the affected stage's completion, not the start.
func (s *Service) StartSession(ctx context.Context, caseID, learnerID string) (*Session, error) {
	cv, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	for _, problem := range cv.Validate() {
		s.logger.Error().Str("case_id", caseID).Msg(problem)
	}
	if len(cv.Stages) == 0 {
		return nil, fmt.Errorf("case %s has no stages", caseID)
	}

	now := time.Now().UTC()
	session := &Session{
		ID:          uuid.New(),
		CaseID:      caseID,
		LearnerID:   learnerID,
		StageNumber: firstStageNumber(cv),
		Vitals:      cv.InitialVitals,
		State:       StateAwaitingInterventions,
		StartedAt:   now,
		UpdatedAt:   now,
	}

	slot := &sessionSlot{
		session:           session,
		variant:           cv,
		reportedBadStages: make(map[int]bool),
	}
	s.mu.Lock()
	s.sessions[session.ID] = slot
	s.mu.Unlock()

	snapshot := *session
	return &snapshot, nil
}

// InterventionResult is returned from ApplyIntervention.
type InterventionResult struct {
	VitalsBefore   vitals.Vitals          `json:"vitalsBefore"`
	VitalsAfter    vitals.Vitals          `json:"vitalsAfter"`
	Classification vitals.Classification  `json:"classification"`
	Guidance       *evidence.Guidance     `json:"guidance"`
	Applied        AppliedIntervention    `json:"applied"`
	StageAdvanced  bool                   `json:"stageAdvanced"`
	CaseCompleted  bool                   `json:"caseCompleted"`
}

// ApplyIntervention validates the submission against the case vocabulary,
// applies its authored vital effect, fetches guidance under a bounded
// timeout, records the ledger entry, and advances the stage machine. A
// rejected submission leaves the session exactly as it was.
func (s *Service) ApplyIntervention(ctx context.Context, sessionID uuid.UUID, name string) (*InterventionResult, error) {
	slot, err := s.slot(sessionID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	session, cv := slot.session, slot.variant
	if session.State == StateCaseComplete {
		return nil, ErrSessionComplete
	}

	stage, ok := cv.Stage(session.StageNumber)
	if !ok {
		return nil, fmt.Errorf("case %s has no stage %d", cv.ID, session.StageNumber)
	}

	canonical := stage.Canonical(name)
	if !cv.KnowsIntervention(name) {
		return nil, &InvalidInterventionError{Name: name, CaseID: cv.ID}
	}

	// Everything below is computed before the session is touched, so any
	// failure leaves the ledger and vitals in their pre-call state.
	before := session.Vitals
	after := before
	if effect, hasEffect := stage.VitalEffects[canonical]; hasEffect {
		after = vitals.ApplyEffects(before, effect)
	}

	category := stage.CategoryOf(canonical)
	entry := AppliedIntervention{
		ID:        uuid.New(),
		Name:      canonical,
		Stage:     stage.Number,
		Category:  category,
		Success:   interventionSucceeds(stage, session.Ledger, canonical),
		AppliedAt: time.Now().UTC(),
	}
	if canonical != name {
		entry.Submitted = name
	}

	guidance := evidence.FetchWithFallback(ctx, s.gateway, evidence.Request{
		CaseID:       cv.ID,
		Stage:        stage.Number,
		Intervention: canonical,
		Category:     category,
	}, s.guidanceTimeout)

	// Commit.
	session.Vitals = after
	session.Ledger = append(session.Ledger, entry)
	session.UpdatedAt = entry.AppliedAt

	result := &InterventionResult{
		VitalsBefore:   before,
		VitalsAfter:    after,
		Classification: vitals.Classify(after),
		Guidance:       guidance,
		Applied:        entry,
	}

	if len(stage.Required) == 0 {
		if !slot.reportedBadStages[stage.Number] {
			slot.reportedBadStages[stage.Number] = true
			cfgErr := &ContentConfigurationError{CaseID: cv.ID, Stage: stage.Number, Reason: "no required interventions; stage can never complete"}
			s.logger.Error().Str("session_id", session.ID.String()).Msg(cfgErr.Error())
		}
		return result, nil
	}

	if stageSatisfied(stage, session.Ledger) {
		if next, ok := nextStageNumber(cv, stage.Number); ok {
			session.StageNumber = next
			result.StageAdvanced = true
		} else {
			completedAt := time.Now().UTC()
			session.State = StateCaseComplete
			session.CompletedAt = &completedAt
			result.StageAdvanced = true
			result.CaseCompleted = true
			s.emitCompletion(session)
		}
	}

	return result, nil
}

// TickResult is returned from Tick.
type TickResult struct {
	Vitals             vitals.Vitals                `json:"vitals"`
	DeteriorationRates map[vitals.Field]float64     `json:"deteriorationRates"`
	Classification     vitals.Classification        `json:"classification"`
	TimeToCriticalSec  map[vitals.Field]float64     `json:"timeToCriticalSec,omitempty"`
}

// Tick advances the session's vitals along the current stage's
// deterioration curve for deltaSeconds of elapsed time. The scheduler
// driving ticks is external; the service has no timers of its own.
func (s *Service) Tick(ctx context.Context, sessionID uuid.UUID, deltaSeconds float64) (*TickResult, error) {
	if deltaSeconds < 0 {
		return nil, fmt.Errorf("deltaSeconds must be non-negative, got %v", deltaSeconds)
	}

	slot, err := s.slot(sessionID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	session, cv := slot.session, slot.variant
	if session.State == StateCaseComplete {
		return nil, ErrSessionComplete
	}

	curve := cv.CurveForStage(session.StageNumber)
	after, rates := vitals.Tick(session.Vitals, curve, deltaSeconds)
	session.Vitals = after
	session.UpdatedAt = time.Now().UTC()

	result := &TickResult{
		Vitals:             after,
		DeteriorationRates: rates,
		Classification:     vitals.Classify(after),
	}
	if stage, ok := cv.Stage(session.StageNumber); ok && len(stage.CriticalThresholds) > 0 {
		result.TimeToCriticalSec = vitals.TimeToCritical(after, curve, stage.CriticalThresholds)
	}
	return result, nil
}

// SessionState is the read-only view returned to callers.
type SessionState struct {
	Session      Session         `json:"session"`
	CurrentStage int             `json:"currentStage"`
	Ledger       []AppliedIntervention `json:"ledger"`
	State        CompletionState `json:"state"`
}

// GetSessionState returns a snapshot of the session without mutating it.
func (s *Service) GetSessionState(_ context.Context, sessionID uuid.UUID) (*SessionState, error) {
	slot, err := s.slot(sessionID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	session := *slot.session
	ledger := append([]AppliedIntervention(nil), slot.session.Ledger...)
	session.Ledger = ledger
	return &SessionState{
		Session:      session,
		CurrentStage: session.StageNumber,
		Ledger:       ledger,
		State:        session.State,
	}, nil
}

// EndSession removes the session from the registry. Abandonment needs no
// engine-side cleanup beyond this: all calls are short and synchronous.
func (s *Service) EndSession(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *Service) slot(id uuid.UUID) (*sessionSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return slot, nil
}

func (s *Service) emitCompletion(session *Session) {
	if s.emitter == nil {
		return
	}
	ids := make([]string, 0, len(session.Ledger))
	for i := range session.Ledger {
		ids = append(ids, session.Ledger[i].ID.String())
	}
	s.emitter.Emit(telemetry.Event{
		Event:                  telemetry.EventCaseCompleted,
		CaseID:                 session.CaseID,
		CompletedBy:            session.LearnerID,
		AppliedInterventionIDs: ids,
		Timestamp:              time.Now().UTC(),
	})
}

func firstStageNumber(cv *casebank.CaseVariant) int {
	first := cv.Stages[0].Number
	for i := range cv.Stages {
		if cv.Stages[i].Number < first {
			first = cv.Stages[i].Number
		}
	}
	return first
}

func nextStageNumber(cv *casebank.CaseVariant, current int) (int, bool) {
	numbers := make([]int, 0, len(cv.Stages))
	for i := range cv.Stages {
		numbers = append(numbers, cv.Stages[i].Number)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		if n > current {
			return n, true
		}
	}
	return 0, false
}
