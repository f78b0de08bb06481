package complydex

import (
	dombatch "github.com/kailas-cloud/complydex/internal/domain/batch"
	"github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/saved"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
	"github.com/kailas-cloud/complydex/internal/domain/search/ordering"
	"github.com/kailas-cloud/complydex/internal/domain/search/result"
)

// Public aliases of the domain model.
type (
	Record       = record.Record
	Kind         = record.Kind
	Filters      = criteria.Filters
	SortField    = ordering.Field
	SortOrder    = ordering.Order
	SearchPage   = result.Page
	SearchResult = result.Result
	RecentSearch = history.Recent
	SavedSearch  = saved.Search
	BatchResult  = dombatch.Result
)

// Record kinds.
const (
	KindContract = record.KindContract
	KindFile     = record.KindFile
)

// Sort fields and directions.
const (
	SortCreatedAt  = ordering.CreatedAt
	SortUpdatedAt  = ordering.UpdatedAt
	SortAmount     = ordering.Amount
	SortExpiryDate = ordering.ContractExpiryDate
	SortName       = ordering.Name
	Asc            = ordering.Asc
	Desc           = ordering.Desc
)

// SearchParams describes one search. Zero values take the defaults:
// sort by createdAt desc, limit 25, offset 0, no filters. An empty UserID
// makes the search anonymous and skips the history write.
type SearchParams struct {
	Query     string
	UserID    string
	Filters   Filters
	SortBy    SortField
	SortOrder SortOrder
	Limit     int
	Offset    int
}
