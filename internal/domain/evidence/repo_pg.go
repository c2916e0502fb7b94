package evidence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgGateway serves guidance from the sim_evidence_passage table: authored,
// clinician-reviewed passages keyed by case, stage and canonical
// intervention name. It is the keyed-lookup tier of grounding; a ranking
// retrieval service can replace it behind the same interface.
type pgGateway struct {
	pool *pgxpool.Pool
}

// NewPGGateway creates a Postgres-backed grounding gateway.
func NewPGGateway(pool *pgxpool.Pool) Gateway {
	return &pgGateway{pool: pool}
}

func (g *pgGateway) FetchGuidance(ctx context.Context, req Request) (*Guidance, error) {
	rows, err := g.pool.Query(ctx, `
		SELECT passage_id, section, explanation, source_citation, license, risk_flags
		FROM sim_evidence_passage
		WHERE case_id = $1 AND stage_number = $2 AND intervention = $3
		ORDER BY rank, passage_id
		LIMIT 5`,
		req.CaseID, req.Stage, req.Intervention)
	if err != nil {
		return nil, fmt.Errorf("query evidence passages: %w", err)
	}
	defer rows.Close()

	guidance := &Guidance{}
	seenFlags := make(map[string]bool)
	for rows.Next() {
		var (
			ref       EvidenceRef
			excerpt   string
			riskFlags []string
		)
		ref.CaseID = req.CaseID
		if err := rows.Scan(&ref.PassageID, &ref.Section, &excerpt, &ref.SourceCitation, &ref.License, &riskFlags); err != nil {
			return nil, fmt.Errorf("scan evidence passage: %w", err)
		}
		if guidance.Explanation == "" {
			guidance.Explanation = excerpt
		}
		guidance.Sources = append(guidance.Sources, ref)
		for _, flag := range riskFlags {
			if !seenFlags[flag] {
				seenFlags[flag] = true
				guidance.RiskFlags = append(guidance.RiskFlags, flag)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence passages: %w", err)
	}

	if len(guidance.Sources) == 0 {
		return nil, ErrUnavailable
	}
	return guidance, nil
}
