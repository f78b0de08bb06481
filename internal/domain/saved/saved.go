package saved

import (
	"strings"
	"time"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
)

// MaxNameLength bounds saved search names.
const MaxNameLength = 100

// Search is a user-named, persisted (query, filters) pair.
type Search struct {
	ID        string
	UserID    string
	Name      string
	Query     string
	Filters   criteria.Filters
	CreatedAt time.Time
}

// New validates input and builds a saved search. The name is trimmed.
func New(id, userID, name, query string, filters criteria.Filters, createdAt time.Time) (Search, error) {
	if userID == "" {
		return Search{}, domain.NewValidation("userId", "is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Search{}, domain.NewValidation("name", "is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return Search{}, domain.NewValidation("name", "too long (max %d chars)", MaxNameLength)
	}
	if len(query) > request.MaxQueryLength {
		return Search{}, domain.NewValidation("query", "too long (max %d chars)", request.MaxQueryLength)
	}
	if err := filters.Validate(); err != nil {
		return Search{}, err
	}
	return Search{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Query:     query,
		Filters:   filters,
		CreatedAt: createdAt,
	}, nil
}

// OwnedBy reports whether userID owns the saved search.
func (s *Search) OwnedBy(userID string) bool {
	return s.UserID == userID
}
