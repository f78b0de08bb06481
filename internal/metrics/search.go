package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/complydex/internal/logger"
)

// Search Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "complydex",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"}, // "search" / "suggest"
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "complydex",
			Name:      "search_results",
			Help:      "Matches per search before pagination",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200, 400},
		},
	)

	SearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "complydex",
			Name:      "search_total",
			Help:      "Total searches by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok / invalid / upstream / error
	)

	BackgroundFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "complydex",
			Name:      "background_task_failures_total",
			Help:      "Best-effort tasks that failed or were dropped",
		},
		[]string{"task"},
	)

	SuggestCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "complydex",
			Name:      "suggest_cache_total",
			Help:      "Suggestion cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerOnce sync.Once

// RegisterSearchMetrics registers the search metrics with reg.
// Only the first call has an effect.
func RegisterSearchMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(SearchDuration, SearchResults, SearchTotal, BackgroundFailuresTotal, SuggestCacheTotal)
	})
}

// SearchRecorder is the telemetry sink for completed searches: one histogram
// observation and one structured log line per search.
type SearchRecorder struct {
	results prometheus.Observer
}

// NewSearchRecorder creates a recorder. A nil results observer means SearchResults.
func NewSearchRecorder(results prometheus.Observer) *SearchRecorder {
	if results == nil {
		results = SearchResults
	}
	return &SearchRecorder{results: results}
}

// RecordSearch reports one completed search.
func (r *SearchRecorder) RecordSearch(
	ctx context.Context, userID, query string, total int, took time.Duration,
) error {
	r.results.Observe(float64(total))
	logger.FromContext(ctx).Info("search",
		zap.String("user_id", userID),
		zap.Int("query_len", len(query)),
		zap.Int("total", total),
		zap.Duration("took", took),
	)
	return nil
}

// ObserveOperation records the duration and outcome of a search or suggest call.
func ObserveOperation(operation, outcome string, took time.Duration) {
	SearchDuration.WithLabelValues(operation).Observe(took.Seconds())
	SearchTotal.WithLabelValues(operation, outcome).Inc()
}
