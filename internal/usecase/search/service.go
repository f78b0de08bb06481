package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/search/filter"
	"github.com/kailas-cloud/complydex/internal/domain/search/ordering"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
	"github.com/kailas-cloud/complydex/internal/domain/search/result"
)

// CandidateLimit is how many records are fetched per collection before text
// matching. Matches beyond it are never seen, so it is the ceiling on total.
const CandidateLimit = 200

// Service answers searches and suggestions over contracts and files.
type Service struct {
	source         RecordSource
	dispatcher     Dispatcher
	history        HistoryWriter
	telemetry      Telemetry
	logger         *zap.Logger
	candidateLimit int
	now            func() time.Time
}

// New creates a search service. history and telemetry may be nil.
func New(
	source RecordSource, dispatcher Dispatcher,
	history HistoryWriter, telemetry Telemetry, logger *zap.Logger,
) *Service {
	return &Service{
		source:         source,
		dispatcher:     dispatcher,
		history:        history,
		telemetry:      telemetry,
		logger:         logger,
		candidateLimit: CandidateLimit,
		now:            time.Now,
	}
}

// WithCandidateLimit overrides the per-collection fetch size.
func (s *Service) WithCandidateLimit(n int) *Service {
	if n > 0 {
		s.candidateLimit = n
	}
	return s
}

// WithClock replaces the time source used for history timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type candidate struct {
	rec   *record.Record
	score int
}

// Search filters, matches, scores, sorts and paginates records.
// History and telemetry are written after the page is final and never affect it.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	start := s.now()
	filters := req.Filters()

	expr, err := filters.Expression()
	if err != nil {
		return result.Page{}, err
	}

	recs, err := s.fetch(ctx, admittedKinds(filters.Includes), expr, req.SortBy(), req.SortOrder(), s.candidateLimit)
	if err != nil {
		return result.Page{}, err
	}

	query := strings.TrimSpace(req.Query())
	lowerQuery := strings.ToLower(query)

	matched := make([]candidate, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		if lowerQuery != "" && !matchesQuery(rec, lowerQuery) {
			continue
		}
		matched = append(matched, candidate{rec: rec, score: Score(rec, query)})
	}

	sortCandidates(matched, req.SortBy(), req.SortOrder())

	total := len(matched)
	lo := min(req.Offset(), total)
	hi := min(lo+req.Limit(), total)

	results := make([]result.Result, 0, hi-lo)
	for _, c := range matched[lo:hi] {
		results = append(results, result.New(c.rec, c.score))
	}

	page := result.Page{
		Results:    results,
		Total:      total,
		Query:      req.Query(),
		Filters:    filters,
		Pagination: result.NewPagination(req.Limit(), req.Offset(), total),
	}

	s.afterSearch(ctx, req, total, s.now().Sub(start))
	return page, nil
}

// fetch lists every kind concurrently and merges the batches in kind order.
// Any failure fails the whole fetch with an UpstreamFetchError.
func (s *Service) fetch(
	ctx context.Context, kinds []record.Kind, expr filter.Expression,
	sortBy ordering.Field, order ordering.Order, limit int,
) ([]record.Record, error) {
	batches := make([][]record.Record, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			recs, err := s.source.List(gctx, kind, expr, sortBy, order, limit)
			if err != nil {
				return asUpstream(kind, err)
			}
			for j := range recs {
				recs[j].Kind = kind
			}
			batches[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	n := 0
	for _, b := range batches {
		n += len(b)
	}
	out := make([]record.Record, 0, n)
	for _, b := range batches {
		out = append(out, b...)
	}
	return out, nil
}

func asUpstream(kind record.Kind, err error) error {
	var ue *domain.UpstreamFetchError
	if errors.As(err, &ue) {
		return err
	}
	return domain.NewUpstreamFetch(kind.Collection(), domain.UpstreamUnavailable, err)
}

func admittedKinds(includes func(record.Kind) bool) []record.Kind {
	kinds := make([]record.Kind, 0, len(record.Kinds))
	for _, k := range record.Kinds {
		if includes(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// sortCandidates orders by score desc, then the requested key, then newest
// first, then kind and id so equal records never swap between calls.
func sortCandidates(cs []candidate, by ordering.Field, order ordering.Order) {
	slices.SortStableFunc(cs, func(a, b candidate) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := order.Apply(by.Compare(a.rec, b.rec)); c != 0 {
			return c
		}
		if c := b.rec.CreatedAt.Compare(a.rec.CreatedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.rec.Kind, b.rec.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.rec.ID, b.rec.ID)
	})
}

func (s *Service) afterSearch(ctx context.Context, req *request.Request, total int, took time.Duration) {
	userID := req.UserID()

	if s.history != nil && userID != "" {
		entry := history.Entry{
			UserID:      userID,
			Query:       req.Query(),
			Filters:     req.Filters(),
			ResultCount: total,
			Timestamp:   s.now(),
		}
		s.dispatcher.Go(ctx, "history", func(ctx context.Context) error {
			return s.history.Append(ctx, &entry)
		})
	}

	if s.telemetry != nil {
		query := req.Query()
		s.dispatcher.Go(ctx, "telemetry", func(ctx context.Context) error {
			return s.telemetry.RecordSearch(ctx, userID, query, total, took)
		})
	}
}
