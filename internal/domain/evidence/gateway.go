// Package evidence defines the grounding gateway: retrieval of
// citation-backed explanatory text keyed by case, stage and intervention.
// The ranking implementation lives behind the Gateway interface; this
// package supplies the contract, a Postgres-backed keyed lookup, and the
// static fallback used when retrieval is unavailable.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/casebank"
)

// ErrUnavailable reports that the grounding backend failed or returned
// nothing usable. Callers recover via FallbackGuidance.
var ErrUnavailable = errors.New("evidence gateway unavailable")

// EvidenceRef identifies one grounding source passage.
type EvidenceRef struct {
	CaseID         string `json:"caseId"`
	Section        string `json:"section"`
	PassageID      string `json:"passageId"`
	SourceCitation string `json:"sourceCitation"`
	License        string `json:"license"`
}

// Guidance is the explanatory payload attached to an intervention outcome.
// Fallback is true when the explanation is the static authored one rather
// than retrieved, grounded text.
type Guidance struct {
	Explanation string        `json:"explanation"`
	Sources     []EvidenceRef `json:"evidenceSources"`
	RiskFlags   []string      `json:"riskFlags,omitempty"`
	Fallback    bool          `json:"fallback"`
}

// Request keys a guidance lookup.
type Request struct {
	CaseID       string
	Stage        int
	Intervention string
	Category     casebank.InterventionCategory
}

// Gateway retrieves grounded guidance. Implementations are read-only
// queries: they must never alter session state, and they are the only
// engine dependency expected to suspend on IO, so every call takes a
// context for cancellation.
type Gateway interface {
	FetchGuidance(ctx context.Context, req Request) (*Guidance, error)
}

// FallbackGuidance builds the static authored explanation used when the
// gateway is unavailable. Always non-empty, never grounded.
func FallbackGuidance(intervention string) *Guidance {
	return &Guidance{
		Explanation: fmt.Sprintf("%s is indicated for this stage based on established guidelines", intervention),
		Sources:     []EvidenceRef{},
		Fallback:    true,
	}
}

// FetchWithFallback queries the gateway under a bounded timeout and falls
// back to the static explanation on error, timeout or an empty result. It
// never returns an error: guidance degradation is surfaced only through the
// Fallback flag.
func FetchWithFallback(ctx context.Context, gw Gateway, req Request, timeout time.Duration) *Guidance {
	if gw == nil {
		return FallbackGuidance(req.Intervention)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, err := gw.FetchGuidance(ctx, req)
	if err != nil || g == nil || g.Explanation == "" {
		return FallbackGuidance(req.Intervention)
	}
	return g
}
