package request

import (
	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
	"github.com/kailas-cloud/complydex/internal/domain/search/ordering"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 25
	MaxLimit       = 500
	// MinSuggestLength is the shortest query, in runes, that gets suggestions.
	MinSuggestLength = 2
	// MaxOffset bounds paging depth.
	MaxOffset = 100_000
)

// Request is a validated search query.
type Request struct {
	query     string
	userID    string
	filters   criteria.Filters
	sortBy    ordering.Field
	sortOrder ordering.Order
	limit     int
	offset    int
}

// New validates and normalizes search parameters.
// Defaults: sortBy=createdAt, sortOrder=desc, limit=25. An empty userID is
// allowed and makes the search anonymous.
func New(
	query, userID string,
	filters criteria.Filters,
	sortBy ordering.Field,
	sortOrder ordering.Order,
	limit, offset int,
) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, domain.NewValidation("query", "too long (max %d chars)", MaxQueryLength)
	}
	if limit < 0 {
		return Request{}, domain.NewValidation("limit", "must not be negative")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		return Request{}, domain.NewValidation("limit", "must not exceed %d", MaxLimit)
	}
	if offset < 0 {
		return Request{}, domain.NewValidation("offset", "must not be negative")
	}
	if offset > MaxOffset {
		return Request{}, domain.NewValidation("offset", "must not exceed %d", MaxOffset)
	}
	if sortBy == "" {
		sortBy = ordering.CreatedAt
	}
	if !sortBy.IsValid() {
		return Request{}, domain.NewValidation("sortBy", "unsupported sort field %q", sortBy)
	}
	if sortOrder == "" {
		sortOrder = ordering.Desc
	}
	if !sortOrder.IsValid() {
		return Request{}, domain.NewValidation("sortOrder", "must be asc or desc")
	}
	if err := filters.Validate(); err != nil {
		return Request{}, err
	}

	return Request{
		query:     query,
		userID:    userID,
		filters:   filters,
		sortBy:    sortBy,
		sortOrder: sortOrder,
		limit:     limit,
		offset:    offset,
	}, nil
}

// Query returns the search query text as given.
func (r *Request) Query() string { return r.query }

// UserID returns the caller identity, empty for anonymous searches.
func (r *Request) UserID() string { return r.userID }

// Filters returns the structured filters.
func (r *Request) Filters() criteria.Filters { return r.filters }

// SortBy returns the secondary sort field.
func (r *Request) SortBy() ordering.Field { return r.sortBy }

// SortOrder returns the secondary sort direction.
func (r *Request) SortOrder() ordering.Order { return r.sortOrder }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the number of results to skip.
func (r *Request) Offset() int { return r.offset }
