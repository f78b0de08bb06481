package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/search/filter"
	"github.com/kailas-cloud/complydex/internal/domain/search/ordering"
	"github.com/kailas-cloud/complydex/internal/worker"
)

// RecordSource fetches candidate records of one kind, filtered and ordered at the fetch layer.
type RecordSource interface {
	List(
		ctx context.Context, kind record.Kind, expr filter.Expression,
		sortBy ordering.Field, order ordering.Order, limit int,
	) ([]record.Record, error)
}

// HistoryWriter appends search history entries.
type HistoryWriter interface {
	Append(ctx context.Context, e *history.Entry) error
}

// Telemetry receives one event per completed search.
type Telemetry interface {
	RecordSearch(ctx context.Context, userID, query string, total int, took time.Duration) error
}

// Dispatcher runs best-effort work after the response is decided.
type Dispatcher interface {
	Go(ctx context.Context, name string, task worker.Task)
}
