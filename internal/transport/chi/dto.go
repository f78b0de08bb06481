package chi

import (
	"time"

	"github.com/kailas-cloud/complydex/internal/domain"
	dombatch "github.com/kailas-cloud/complydex/internal/domain/batch"
	"github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/saved"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
	"github.com/kailas-cloud/complydex/internal/domain/search/result"
)

// ErrorCode is the machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeUnauthenticated     ErrorCode = "unauthenticated"
	CodeValidationFailed    ErrorCode = "validation_failed"
	CodeDuplicateName       ErrorCode = "duplicate_name"
	CodeForbidden           ErrorCode = "forbidden"
	CodeNotFound            ErrorCode = "not_found"
	CodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	CodeUpstreamTimeout     ErrorCode = "upstream_timeout"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Param      string    `json:"param,omitempty"`
	Collection string    `json:"collection,omitempty"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query     string           `json:"query"`
	Filters   criteria.Filters `json:"filters"`
	SortBy    string           `json:"sortBy,omitempty"`
	SortOrder string           `json:"sortOrder,omitempty"`
	Limit     int              `json:"limit,omitempty"`
	Offset    int              `json:"offset,omitempty"`
}

// RecordBody is the wire form of a contract or file.
type RecordBody struct {
	ID                 string   `json:"id"`
	Type               string   `json:"type,omitempty"`
	Name               string   `json:"name,omitempty"`
	ContractName       string   `json:"contractName,omitempty"`
	ContractNumber     string   `json:"contractNumber,omitempty"`
	Description        string   `json:"description,omitempty"`
	Vendor             string   `json:"vendor,omitempty"`
	Department         string   `json:"department,omitempty"`
	Status             string   `json:"status,omitempty"`
	Priority           string   `json:"priority,omitempty"`
	ContractType       string   `json:"contractType,omitempty"`
	Amount             *float64 `json:"amount,omitempty"`
	ContractExpiryDate string   `json:"contractExpiryDate,omitempty"`
	AssignedManagers   []string `json:"assignedManagers,omitempty"`
	Compliance         []string `json:"compliance,omitempty"`
	CreatedAt          string   `json:"createdAt,omitempty"`
	UpdatedAt          string   `json:"updatedAt,omitempty"`
}

// SearchResultItem is a record projection plus its relevance score.
type SearchResultItem struct {
	RecordBody
	SearchScore int `json:"searchScore"`
}

// PaginationBody describes the returned window.
type PaginationBody struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// SearchResponse is the result envelope.
type SearchResponse struct {
	Results    []SearchResultItem `json:"results"`
	Total      int                `json:"total"`
	Query      string             `json:"query"`
	Filters    criteria.Filters   `json:"filters"`
	Pagination PaginationBody     `json:"pagination"`
}

// SuggestionsResponse is the body of GET /search/suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// RecentItem is one entry of the recent-searches view.
type RecentItem struct {
	Query       string    `json:"query"`
	Timestamp   time.Time `json:"timestamp"`
	ResultCount int       `json:"resultCount"`
}

// RecentResponse is the body of GET /search/recent.
type RecentResponse struct {
	Items []RecentItem `json:"items"`
}

// SaveSearchRequest is the body of POST /saved-searches.
type SaveSearchRequest struct {
	Name    string           `json:"name"`
	Query   string           `json:"query"`
	Filters criteria.Filters `json:"filters"`
}

// SavedSearchBody is the wire form of a saved search.
type SavedSearchBody struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Query     string           `json:"query"`
	Filters   criteria.Filters `json:"filters"`
	CreatedAt time.Time        `json:"createdAt"`
}

// SavedSearchListResponse is the body of GET /saved-searches.
type SavedSearchListResponse struct {
	Items []SavedSearchBody `json:"items"`
}

// BatchUpsertRequest is the body of POST /records/{kind}/batch.
type BatchUpsertRequest struct {
	Records []RecordBody `json:"records"`
}

// BatchDeleteRequest is the body of DELETE /records/{kind}/batch.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchResultItem is the outcome of one batch item.
type BatchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse summarizes a batch operation.
type BatchResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordToBody(r *record.Record) RecordBody {
	b := RecordBody{
		ID:                 r.ID,
		Type:               string(r.Kind),
		Name:               r.Name,
		ContractName:       r.ContractName,
		ContractNumber:     r.ContractNumber,
		Description:        r.Description,
		Vendor:             r.Vendor,
		Department:         r.Department,
		Status:             r.Status,
		Priority:           r.Priority,
		ContractType:       r.ContractType,
		Amount:             r.Amount,
		ContractExpiryDate: r.ContractExpiryDate,
		AssignedManagers:   r.AssignedManagers,
		Compliance:         r.Compliance,
	}
	if !r.CreatedAt.IsZero() {
		b.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !r.UpdatedAt.IsZero() {
		b.UpdatedAt = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return b
}

// recordFromBody converts the wire form. Kind is bound later from the path.
func recordFromBody(b *RecordBody) (record.Record, error) {
	rec := record.Record{
		ID:                 b.ID,
		Kind:               record.Kind(b.Type),
		Name:               b.Name,
		ContractName:       b.ContractName,
		ContractNumber:     b.ContractNumber,
		Description:        b.Description,
		Vendor:             b.Vendor,
		Department:         b.Department,
		Status:             b.Status,
		Priority:           b.Priority,
		ContractType:       b.ContractType,
		Amount:             b.Amount,
		ContractExpiryDate: b.ContractExpiryDate,
		AssignedManagers:   b.AssignedManagers,
		Compliance:         b.Compliance,
	}
	if b.CreatedAt != "" {
		t, err := record.ParseTime(b.CreatedAt)
		if err != nil {
			return record.Record{}, domain.NewValidation("createdAt", "%v", err)
		}
		rec.CreatedAt = t
	}
	if b.UpdatedAt != "" {
		t, err := record.ParseTime(b.UpdatedAt)
		if err != nil {
			return record.Record{}, domain.NewValidation("updatedAt", "%v", err)
		}
		rec.UpdatedAt = t
	}
	return rec, nil
}

func pageToResponse(p *result.Page) SearchResponse {
	items := make([]SearchResultItem, len(p.Results))
	for i := range p.Results {
		rec := p.Results[i].Record()
		items[i] = SearchResultItem{
			RecordBody:  recordToBody(&rec),
			SearchScore: p.Results[i].Score(),
		}
	}
	return SearchResponse{
		Results: items,
		Total:   p.Total,
		Query:   p.Query,
		Filters: p.Filters,
		Pagination: PaginationBody{
			Limit:   p.Pagination.Limit,
			Offset:  p.Pagination.Offset,
			HasMore: p.Pagination.HasMore,
		},
	}
}

func recentToResponse(list []history.Recent) RecentResponse {
	items := make([]RecentItem, len(list))
	for i, r := range list {
		items[i] = RecentItem{Query: r.Query, Timestamp: r.Timestamp.UTC(), ResultCount: r.ResultCount}
	}
	return RecentResponse{Items: items}
}

func savedToBody(s *saved.Search) SavedSearchBody {
	return SavedSearchBody{
		ID:        s.ID,
		Name:      s.Name,
		Query:     s.Query,
		Filters:   s.Filters,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func batchToResponse(results []dombatch.Result) BatchResponse {
	items := make([]BatchResultItem, len(results))
	for i, res := range results {
		items[i] = BatchResultItem{ID: res.ID(), Status: string(res.Status())}
		if res.Err() != nil {
			_, body := classify(res.Err())
			items[i].Error = &body
		}
	}
	succeeded, failed := dombatch.Summary(results)
	return BatchResponse{Items: items, Succeeded: succeeded, Failed: failed}
}
