package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/complydex/internal/domain/batch"
	"github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/saved"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
	"github.com/kailas-cloud/complydex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/complydex/internal/usecase/health"
)

// Searcher runs full searches.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
}

// Suggester returns type-ahead suggestions.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

// RecentReader lists a user's recent searches.
type RecentReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]history.Recent, error)
}

// SavedSearches manages named searches.
type SavedSearches interface {
	Save(ctx context.Context, userID, name, query string, filters criteria.Filters) (saved.Search, error)
	List(ctx context.Context, userID string) ([]saved.Search, error)
	Delete(ctx context.Context, id, userID string) error
}

// Records handles single-record ingestion.
type Records interface {
	Upsert(ctx context.Context, kind record.Kind, rec *record.Record) (bool, error)
	Get(ctx context.Context, kind record.Kind, id string) (record.Record, error)
	Delete(ctx context.Context, kind record.Kind, id string) error
}

// Batches handles multi-record ingestion.
type Batches interface {
	Upsert(ctx context.Context, kind record.Kind, items []record.Record) []dombatch.Result
	Delete(ctx context.Context, kind record.Kind, ids []string) []dombatch.Result
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
