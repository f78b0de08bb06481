package history

import (
	"context"

	"github.com/kailas-cloud/complydex/internal/domain/history"
)

// Repository defines the storage contract for search history.
type Repository interface {
	Append(ctx context.Context, e *history.Entry) error
	List(ctx context.Context, userID string) ([]history.Entry, error)
}
