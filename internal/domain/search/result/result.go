package result

import (
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
)

// Result is a single search hit: a snapshot of the record plus its relevance score.
type Result struct {
	rec   record.Record
	score int
}

// New creates a search result. The record is copied.
func New(rec *record.Record, score int) Result {
	return Result{rec: rec.Clone(), score: score}
}

// Record returns the matched record.
func (r *Result) Record() record.Record { return r.rec }

// Kind returns the source collection.
func (r *Result) Kind() record.Kind { return r.rec.Kind }

// ID returns the record identifier.
func (r *Result) ID() string { return r.rec.ID }

// Score returns the relevance score (0 for empty queries).
func (r *Result) Score() int { return r.score }

// Pagination describes the returned slice of the full result list.
type Pagination struct {
	Limit   int
	Offset  int
	HasMore bool
}

// NewPagination computes HasMore as offset+limit < total without overflowing.
func NewPagination(limit, offset, total int) Pagination {
	hasMore := offset < total && limit < total-offset
	return Pagination{Limit: limit, Offset: offset, HasMore: hasMore}
}

// Page is the search result envelope.
type Page struct {
	Results    []Result
	Total      int
	Query      string
	Filters    criteria.Filters
	Pagination Pagination
}
