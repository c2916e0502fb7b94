package casebank

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pgRepository reads authored case content from the sim_case_variant table.
// The full stage document lives in a JSONB column; decode warnings from
// unknown vital field names are logged once per load.
type pgRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPGRepository creates a Postgres-backed content repository.
func NewPGRepository(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &pgRepository{pool: pool, logger: logger}
}

func (r *pgRepository) GetCase(ctx context.Context, id string) (*CaseVariant, error) {
	var content []byte
	err := r.pool.QueryRow(ctx,
		`SELECT content FROM sim_case_variant WHERE id = $1`, id).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load case %s: %w", id, err)
	}

	cv, warnings, err := DecodeCaseVariant(content)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", id, err)
	}
	for _, w := range warnings {
		r.logger.Warn().Str("case_id", id).Msg(w)
	}
	return cv, nil
}

func (r *pgRepository) ListCases(ctx context.Context, limit, offset int) ([]*CaseSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sim_case_variant`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cases: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, category, age_years, weight_kg, stage_count
		FROM sim_case_variant
		ORDER BY category, name
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var items []*CaseSummary
	for rows.Next() {
		var s CaseSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.AgeYears, &s.WeightKg, &s.Stages); err != nil {
			return nil, 0, fmt.Errorf("scan case summary: %w", err)
		}
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate case summaries: %w", err)
	}
	return items, total, nil
}
