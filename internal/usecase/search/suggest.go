package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/search/filter"
	"github.com/kailas-cloud/complydex/internal/domain/search/ordering"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
)

// Suggestion limits.
const (
	MinSuggestQueryLength = request.MinSuggestLength
	SuggestCandidateLimit = 50
	MaxSuggestions        = 10
)

// Suggest completes a partial query from record names, vendors and contract
// numbers. Queries shorter than MinSuggestQueryLength return nothing without
// touching the store. A collection that fails to load contributes nothing;
// only when every collection fails is an error returned.
func (s *Service) Suggest(ctx context.Context, query string) ([]string, error) {
	list, _, err := s.Suggestions(ctx, query)
	return list, err
}

// Suggestions is Suggest that also reports whether every collection answered.
// A partial list is still returned but should not be cached.
func (s *Service) Suggestions(ctx context.Context, query string) ([]string, bool, error) {
	if utf8.RuneCountInString(query) < MinSuggestQueryLength {
		return []string{}, true, nil
	}

	kinds := record.Kinds
	batches := make([][]record.Record, len(kinds))
	errs := make([]error, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			recs, err := s.source.List(ctx, kind, filter.Expression{}, ordering.CreatedAt, ordering.Desc, SuggestCandidateLimit)
			if err != nil {
				errs[i] = asUpstream(kind, err)
				return nil
			}
			batches[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		s.logger.Warn("Suggestion source failed",
			zap.String("collection", kinds[i].Collection()),
			zap.Error(err),
		)
	}
	if failed == len(kinds) {
		return nil, false, fmt.Errorf("suggest: %w", errors.Join(errs...))
	}

	lowerQuery := strings.ToLower(query)
	seen := make(map[string]struct{})
	var out []string
	for i, kind := range kinds {
		for j := range batches[i] {
			for _, v := range suggestionFields(kind, &batches[i][j]) {
				if !contains(v, lowerQuery) {
					continue
				}
				if _, dup := seen[v]; dup {
					continue
				}
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}

	rankSuggestions(out, lowerQuery)
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	if out == nil {
		out = []string{}
	}
	return out, failed == 0, nil
}

func suggestionFields(kind record.Kind, rec *record.Record) []string {
	if kind == record.KindFile {
		return []string{rec.Name}
	}
	return []string{rec.ContractName, rec.Vendor, rec.ContractNumber}
}

// rankSuggestions puts exact matches first, then prefix matches, then the
// rest; within a tier shorter strings come first.
func rankSuggestions(vs []string, lowerQuery string) {
	tier := func(v string) int {
		lv := strings.ToLower(v)
		switch {
		case lv == lowerQuery:
			return 0
		case strings.HasPrefix(lv, lowerQuery):
			return 1
		default:
			return 2
		}
	}
	slices.SortStableFunc(vs, func(a, b string) int {
		if c := cmp.Compare(tier(a), tier(b)); c != 0 {
			return c
		}
		return cmp.Compare(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	})
}
