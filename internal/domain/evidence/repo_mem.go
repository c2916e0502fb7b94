package evidence

import (
	"context"
	"fmt"
	"sync"
)

// StaticGateway serves guidance from an in-process table. It backs the
// seeded development server and tests; production deployments point the
// simulation service at the Postgres or remote retrieval gateway instead.
type StaticGateway struct {
	mu      sync.RWMutex
	entries map[string]*Guidance
}

func NewStaticGateway() *StaticGateway {
	return &StaticGateway{entries: make(map[string]*Guidance)}
}

func key(caseID string, stage int, intervention string) string {
	return fmt.Sprintf("%s|%d|%s", caseID, stage, intervention)
}

// Put registers guidance for a case/stage/intervention key. Authoring-time
// only; FetchGuidance is the runtime read path.
func (g *StaticGateway) Put(caseID string, stage int, intervention string, guidance *Guidance) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[key(caseID, stage, intervention)] = guidance
}

func (g *StaticGateway) FetchGuidance(ctx context.Context, req Request) (*Guidance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	guidance, ok := g.entries[key(req.CaseID, req.Stage, req.Intervention)]
	if !ok {
		return nil, ErrUnavailable
	}
	out := *guidance
	return &out, nil
}
