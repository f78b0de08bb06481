package saved

import (
	"context"

	"github.com/kailas-cloud/complydex/internal/domain/saved"
)

// Repository defines the storage contract for saved searches.
type Repository interface {
	// Create fails with *domain.DuplicateNameError when the user already has the name.
	Create(ctx context.Context, s *saved.Search) error
	Get(ctx context.Context, id string) (saved.Search, error)
	ListByUser(ctx context.Context, userID string) ([]saved.Search, error)
	Delete(ctx context.Context, s *saved.Search) error
}
