package history

import (
	"time"

	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
)

// DefaultRecentLimit is the number of recent searches returned when the caller passes 0.
const DefaultRecentLimit = 10

// Entry is an appended, never mutated record of one completed search.
type Entry struct {
	UserID      string
	Query       string
	Filters     criteria.Filters
	ResultCount int
	Timestamp   time.Time
}

// Recent is the projection returned by the recent-searches view.
type Recent struct {
	Query       string
	Timestamp   time.Time
	ResultCount int
}

// Dedupe keeps the first occurrence of each query text from entries ordered
// newest first, and stops after limit items.
func Dedupe(entries []Entry, limit int) []Recent {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	seen := make(map[string]struct{}, len(entries))
	out := make([]Recent, 0, min(limit, len(entries)))
	for _, e := range entries {
		if _, dup := seen[e.Query]; dup {
			continue
		}
		seen[e.Query] = struct{}{}
		out = append(out, Recent{Query: e.Query, Timestamp: e.Timestamp, ResultCount: e.ResultCount})
		if len(out) == limit {
			break
		}
	}
	return out
}
