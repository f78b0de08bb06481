package saved

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/saved"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
)

// Service manages user-named saved searches.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// New creates a saved-search service.
func New(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the time source used for CreatedAt.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Save stores a new saved search for userID.
// A name the user already uses yields *domain.DuplicateNameError.
func (s *Service) Save(
	ctx context.Context, userID, name, query string, filters criteria.Filters,
) (saved.Search, error) {
	ss, err := saved.New(s.newID(), userID, name, query, filters, s.now().UTC())
	if err != nil {
		return saved.Search{}, err
	}
	if err := s.repo.Create(ctx, &ss); err != nil {
		return saved.Search{}, fmt.Errorf("create saved search: %w", err)
	}
	return ss, nil
}

// List returns the user's saved searches, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]saved.Search, error) {
	if userID == "" {
		return nil, domain.NewValidation("userId", "is required")
	}
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	return list, nil
}

// Delete removes a saved search owned by userID. A missing id yields
// domain.ErrNotFound; an id owned by someone else yields *domain.UnauthorizedError
// and leaves the entry in place.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return domain.NewValidation("userId", "is required")
	}
	ss, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("saved search %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("get saved search: %w", err)
	}
	if !ss.OwnedBy(userID) {
		return &domain.UnauthorizedError{Resource: "saved search", ID: id}
	}
	if err := s.repo.Delete(ctx, &ss); err != nil {
		return fmt.Errorf("delete saved search: %w", err)
	}
	return nil
}
