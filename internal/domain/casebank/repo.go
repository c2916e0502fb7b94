package casebank

import (
	"context"
	"errors"
)

// ErrCaseNotFound is returned when no case variant exists for the id.
var ErrCaseNotFound = errors.New("case variant not found")

// CaseSummary is the listing view of a case variant, without stage content.
type CaseSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	AgeYears float64 `json:"ageYears"`
	WeightKg float64 `json:"weightKg"`
	Stages   int     `json:"stages"`
}

// Repository is the read-only content source consumed by the simulation
// engine. Implementations must treat content as immutable: there is no
// write path at runtime.
type Repository interface {
	GetCase(ctx context.Context, id string) (*CaseVariant, error)
	ListCases(ctx context.Context, limit, offset int) ([]*CaseSummary, int, error)
}
