package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *captureSink) Deliver(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *captureSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestEmitter_DeliversAsync(t *testing.T) {
	sink := &captureSink{}
	em := NewEmitter(sink, 8, zerolog.Nop())

	ok := em.Emit(Event{
		Event:                  EventCaseCompleted,
		CaseID:                 "anaphylaxis-a",
		CompletedBy:            "learner-1",
		AppliedInterventionIDs: []string{"a", "b"},
	})
	if !ok {
		t.Fatal("emit rejected with empty queue")
	}
	em.Close()

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(events))
	}
	if events[0].CaseID != "anaphylaxis-a" || events[0].Event != EventCaseCompleted {
		t.Errorf("event = %+v", events[0])
	}
	if events[0].Timestamp.IsZero() {
		t.Error("timestamp must be stamped when absent")
	}
}

func TestEmitter_SwallowsSinkFailures(t *testing.T) {
	sink := &captureSink{fail: true}
	em := NewEmitter(sink, 8, zerolog.Nop())

	// Must not panic or surface the error to the caller.
	em.Emit(Event{Event: EventCaseCompleted, CaseID: "c1"})
	em.Emit(Event{Event: EventCaseCompleted, CaseID: "c2"})
	em.Close()
}

func TestEmitter_DropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{release: block}
	em := NewEmitter(sink, 1, zerolog.Nop())

	em.Emit(Event{CaseID: "in-flight"}) // taken by the worker
	em.Emit(Event{CaseID: "queued"})    // fills the buffer

	dropped := false
	for i := 0; i < 5; i++ {
		if !em.Emit(Event{CaseID: "overflow"}) {
			dropped = true
			break
		}
	}
	close(block)
	em.Close()

	if !dropped {
		t.Error("full queue must drop, not block")
	}
}

type blockingSink struct{ release chan struct{} }

func (s blockingSink) Deliver(context.Context, Event) error {
	<-s.release
	return nil
}

func TestHTTPSink_Deliver(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, time.Second)
	err := sink.Deliver(context.Background(), Event{
		Event:       EventCaseCompleted,
		CaseID:      "febrile-seizure-a",
		CompletedBy: "learner-9",
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if got.CaseID != "febrile-seizure-a" {
		t.Errorf("sink received %+v", got)
	}
}

func TestHTTPSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, time.Second)
	if err := sink.Deliver(context.Background(), Event{Event: EventCaseCompleted}); err == nil {
		t.Error("5xx response must error")
	}
}
