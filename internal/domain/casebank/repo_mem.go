package casebank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// memoryRepository serves decoded case variants from process memory. Used
// for file-backed deployments, the built-in seed content, and tests.
type memoryRepository struct {
	cases map[string]*CaseVariant
	order []string
}

// NewMemoryRepository builds a repository over pre-decoded case variants.
func NewMemoryRepository(cases ...*CaseVariant) Repository {
	repo := &memoryRepository{cases: make(map[string]*CaseVariant, len(cases))}
	for _, cv := range cases {
		if _, dup := repo.cases[cv.ID]; !dup {
			repo.order = append(repo.order, cv.ID)
		}
		repo.cases[cv.ID] = cv
	}
	sort.Strings(repo.order)
	return repo
}

// LoadFile decodes a JSON array of authored case documents from path and
// returns a memory repository over them, along with any content warnings.
func LoadFile(path string) (Repository, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read case content file: %w", err)
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, nil, fmt.Errorf("case content file %s is not a JSON array: %w", path, err)
	}

	var cases []*CaseVariant
	var warnings []string
	for i, raw := range docs {
		cv, w, err := DecodeCaseVariant(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("case content file %s entry %d: %w", path, i, err)
		}
		warnings = append(warnings, w...)
		cases = append(cases, cv)
	}
	return NewMemoryRepository(cases...), warnings, nil
}

func (r *memoryRepository) GetCase(_ context.Context, id string) (*CaseVariant, error) {
	cv, ok := r.cases[id]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return cv, nil
}

func (r *memoryRepository) ListCases(_ context.Context, limit, offset int) ([]*CaseSummary, int, error) {
	total := len(r.order)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	items := make([]*CaseSummary, 0, end-offset)
	for _, id := range r.order[offset:end] {
		cv := r.cases[id]
		items = append(items, &CaseSummary{
			ID:       cv.ID,
			Name:     cv.Name,
			Category: cv.Category,
			AgeYears: cv.AgeYears,
			WeightKg: cv.WeightKg,
			Stages:   len(cv.Stages),
		})
	}
	return items, total, nil
}
