// Package telemetry delivers simulation lifecycle events to an external
// sink. Emission is fire-and-forget: delivery runs off the request path and
// failures are swallowed, so a down sink can never affect a running
// simulation session.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// EventCaseCompleted is emitted when a learner satisfies the final stage of
// a case.
const EventCaseCompleted = "case_completed"

// Event is the wire record accepted by the telemetry sink.
type Event struct {
	Event                  string    `json:"event"`
	CaseID                 string    `json:"caseId"`
	CompletedBy            string    `json:"completedBy"`
	AppliedInterventionIDs []string  `json:"appliedInterventionIds"`
	Timestamp              time.Time `json:"timestamp"`
}

// Sink delivers a single event. Implementations may block on IO; the
// emitter calls them from its own goroutine.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// LogSink writes events to the service log. Default sink in development.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Deliver(_ context.Context, ev Event) error {
	s.Logger.Info().
		Str("event", ev.Event).
		Str("case_id", ev.CaseID).
		Str("completed_by", ev.CompletedBy).
		Int("interventions", len(ev.AppliedInterventionIDs)).
		Time("timestamp", ev.Timestamp).
		Msg("telemetry event")
	return nil
}

// HTTPSink POSTs events as JSON to a collector endpoint.
type HTTPSink struct {
	URL    string
	Client *http.Client
}

func NewHTTPSink(url string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSink) Deliver(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal telemetry event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telemetry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver telemetry event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry sink responded %d", resp.StatusCode)
	}
	return nil
}

// Emitter queues events for asynchronous delivery. The queue is bounded;
// when it is full new events are dropped rather than blocking the caller.
type Emitter struct {
	sink   Sink
	queue  chan Event
	done   chan struct{}
	logger zerolog.Logger
}

// NewEmitter starts an emitter delivering to sink with the given queue
// capacity. Close releases its worker.
func NewEmitter(sink Sink, buffer int, logger zerolog.Logger) *Emitter {
	if buffer <= 0 {
		buffer = 64
	}
	e := &Emitter{
		sink:   sink,
		queue:  make(chan Event, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go e.run()
	return e
}

func (e *Emitter) run() {
	defer close(e.done)
	for ev := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := e.sink.Deliver(ctx, ev); err != nil {
			// Non-critical path: log and move on.
			e.logger.Warn().Err(err).Str("event", ev.Event).Msg("telemetry delivery failed")
		}
		cancel()
	}
}

// Emit enqueues an event without blocking. Returns false when the event was
// dropped because the queue is full.
func (e *Emitter) Emit(ev Event) bool {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	select {
	case e.queue <- ev:
		return true
	default:
		e.logger.Warn().Str("event", ev.Event).Msg("telemetry queue full, event dropped")
		return false
	}
}

// Close drains the queue and stops the worker.
func (e *Emitter) Close() {
	close(e.queue)
	<-e.done
}
