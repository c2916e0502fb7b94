package evidence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type slowGateway struct {
	delay time.Duration
	out   *Guidance
}

func (g *slowGateway) FetchGuidance(ctx context.Context, _ Request) (*Guidance, error) {
	select {
	case <-time.After(g.delay):
		return g.out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type failingGateway struct{}

func (failingGateway) FetchGuidance(context.Context, Request) (*Guidance, error) {
	return nil, errors.New("backend down")
}

func TestFallbackGuidance(t *testing.T) {
	g := FallbackGuidance("IM epinephrine")
	if !g.Fallback {
		t.Error("fallback flag must be set")
	}
	if !strings.Contains(g.Explanation, "IM epinephrine") || !strings.Contains(g.Explanation, "established guidelines") {
		t.Errorf("explanation = %q", g.Explanation)
	}
	if len(g.Sources) != 0 {
		t.Error("fallback guidance carries no evidence")
	}
}

func TestFetchWithFallback_GroundedResult(t *testing.T) {
	gw := NewStaticGateway()
	gw.Put("anaphylaxis-a", 1, "IM epinephrine", &Guidance{
		Explanation: "Epinephrine is first-line therapy for anaphylaxis.",
		Sources: []EvidenceRef{{
			CaseID:         "anaphylaxis-a",
			Section:        "management",
			PassageID:      "p-17",
			SourceCitation: "AAP anaphylaxis guideline",
			License:        "CC-BY-4.0",
		}},
	})

	g := FetchWithFallback(context.Background(), gw, Request{
		CaseID: "anaphylaxis-a", Stage: 1, Intervention: "IM epinephrine",
	}, time.Second)

	if g.Fallback {
		t.Error("grounded result must not be flagged as fallback")
	}
	if len(g.Sources) != 1 || g.Sources[0].PassageID != "p-17" {
		t.Errorf("sources = %+v", g.Sources)
	}
}

func TestFetchWithFallback_Timeout(t *testing.T) {
	gw := &slowGateway{delay: 200 * time.Millisecond, out: &Guidance{Explanation: "late"}}

	start := time.Now()
	g := FetchWithFallback(context.Background(), gw, Request{Intervention: "IV fluid bolus"}, 20*time.Millisecond)
	elapsed := time.Since(start)

	if !g.Fallback || g.Explanation == "" {
		t.Errorf("timeout must yield non-empty fallback, got %+v", g)
	}
	if elapsed > 150*time.Millisecond {
		t.Errorf("fetch was not bounded by the timeout, took %v", elapsed)
	}
}

func TestFetchWithFallback_BackendError(t *testing.T) {
	g := FetchWithFallback(context.Background(), failingGateway{}, Request{Intervention: "Antipyretic"}, time.Second)
	if !g.Fallback {
		t.Error("backend error must yield fallback")
	}
}

func TestFetchWithFallback_EmptyResult(t *testing.T) {
	gw := NewStaticGateway() // nothing registered
	g := FetchWithFallback(context.Background(), gw, Request{Intervention: "Check glucose"}, time.Second)
	if !g.Fallback {
		t.Error("empty retrieval must yield fallback")
	}
}

func TestFetchWithFallback_NilGateway(t *testing.T) {
	g := FetchWithFallback(context.Background(), nil, Request{Intervention: "Position airway"}, time.Second)
	if !g.Fallback {
		t.Error("nil gateway must yield fallback")
	}
}
