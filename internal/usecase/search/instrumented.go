package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
	"github.com/kailas-cloud/complydex/internal/domain/search/result"
	"github.com/kailas-cloud/complydex/internal/metrics"
)

// Engine is the search surface the transport consumes.
type Engine interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
	Suggestions(ctx context.Context, query string) ([]string, bool, error)
}

// InstrumentedEngine wraps Engine with duration/outcome metrics and failure logging.
type InstrumentedEngine struct {
	inner  Engine
	logger *zap.Logger
}

// NewInstrumentedEngine wraps an engine with observability.
func NewInstrumentedEngine(inner Engine, logger *zap.Logger) *InstrumentedEngine {
	return &InstrumentedEngine{inner: inner, logger: logger}
}

// Search delegates to the inner engine and records the outcome.
func (e *InstrumentedEngine) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	start := time.Now()
	page, err := e.inner.Search(ctx, req)
	e.observe("search", start, err)
	return page, err //nolint:wrapcheck // decorator passes the inner error through
}

// Suggest delegates to the inner engine and records the outcome.
func (e *InstrumentedEngine) Suggest(ctx context.Context, query string) ([]string, error) {
	list, _, err := e.Suggestions(ctx, query)
	return list, err
}

// Suggestions delegates to the inner engine and records the outcome.
func (e *InstrumentedEngine) Suggestions(ctx context.Context, query string) ([]string, bool, error) {
	start := time.Now()
	list, complete, err := e.inner.Suggestions(ctx, query)
	e.observe("suggest", start, err)
	if err == nil && !complete {
		e.logger.Warn("Partial suggestions", zap.Int("count", len(list)))
	}
	return list, complete, err //nolint:wrapcheck // decorator passes the inner error through
}

func (e *InstrumentedEngine) observe(op string, start time.Time, err error) {
	duration := time.Since(start)
	outcome := Outcome(err)
	metrics.ObserveOperation(op, outcome, duration)

	if outcome == "upstream" || outcome == "error" {
		e.logger.Error("Search operation failed",
			zap.String("operation", op),
			zap.String("outcome", outcome),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	e.logger.Debug("Search operation completed",
		zap.String("operation", op),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
	)
}

// Outcome classifies err for the outcome metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrUpstreamFetch):
		return "upstream"
	default:
		return "error"
	}
}
