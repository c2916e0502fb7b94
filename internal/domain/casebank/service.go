package casebank

import (
	"context"

	"github.com/rs/zerolog"
)

// Service exposes the read-only content surface and logs content
// configuration problems as cases are first loaded.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetCase loads a case variant and logs any content configuration problems
// it carries. The case is still returned: a misconfigured stage blocks its
// own completion, not the whole case load.
func (s *Service) GetCase(ctx context.Context, id string) (*CaseVariant, error) {
	cv, err := s.repo.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range cv.Validate() {
		s.logger.Error().Str("case_id", cv.ID).Msg(p)
	}
	return cv, nil
}

func (s *Service) ListCases(ctx context.Context, limit, offset int) ([]*CaseSummary, int, error) {
	return s.repo.ListCases(ctx, limit, offset)
}
