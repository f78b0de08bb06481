package history

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/history"
)

// Service records searches and serves the recent-searches view.
type Service struct {
	repo Repository
}

// New creates a history service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append stores one completed search. Anonymous entries are rejected.
func (s *Service) Append(ctx context.Context, e *history.Entry) error {
	if e.UserID == "" {
		return domain.NewValidation("userId", "is required")
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Recent returns the user's latest distinct queries, newest first.
// limit 0 means history.DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]history.Recent, error) {
	if userID == "" {
		return nil, domain.NewValidation("userId", "is required")
	}
	if limit < 0 {
		return nil, domain.NewValidation("limit", "must not be negative")
	}

	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return history.Dedupe(entries, limit), nil
}
