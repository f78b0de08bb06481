package db

import "github.com/kailas-cloud/complydex/internal/domain/search/filter"

// ListQuery is the input for a filtered, sorted scan of an FT index.
type ListQuery struct {
	IndexName  string
	Filters    filter.Expression
	SortBy     string // schema alias; empty keeps index order
	Descending bool
	Offset     int
	Limit      int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// For JSON indexes Fields holds the whole document under "$".
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
