package suggestcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/complydex/internal/db"
	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
)

// DefaultTTL bounds how stale a cached suggestion list can get.
const DefaultTTL = 60 * time.Second

var cacheKeyPrefix = domain.KeyPrefix + "suggest:"

// Suggester produces completions for a partial query.
// complete is false when some source failed and the list is partial.
type Suggester interface {
	Suggestions(ctx context.Context, query string) (list []string, complete bool, err error)
}

// store is the consumer interface for the suggestion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSuggester caches final suggestion lists in a key-value store.
// Matching and ranking are case-insensitive, so lists are keyed by the lowercased query.
type CachedSuggester struct {
	inner      Suggester
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"); it may be nil.
func New(
	inner Suggester,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSuggester {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSuggester{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Suggest returns a cached list or asks the inner suggester.
// Cache failures fall through; only the inner suggester's errors are returned.
// Queries shorter than request.MinSuggestLength return an empty list without a lookup.
func (c *CachedSuggester) Suggest(ctx context.Context, query string) ([]string, error) {
	if utf8.RuneCountInString(query) < request.MinSuggestLength {
		return []string{}, nil
	}

	key := cacheKey(query)

	if list, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return list, nil
	}

	c.incCache("miss")

	list, complete, err := c.inner.Suggestions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	// A partial list would hide the failed source's entries for a whole TTL.
	if complete && len(list) > 0 {
		c.putToCache(ctx, key, list)
	}
	return list, nil
}

func (c *CachedSuggester) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(query string) string {
	h := sha256.Sum256([]byte(strings.ToLower(query)))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedSuggester) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached suggestions", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		c.logger.Warn("Failed to parse cached suggestions", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return list, true
}

func (c *CachedSuggester) putToCache(ctx context.Context, key string, list []string) {
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache suggestions", zap.String("key", key), zap.Error(err))
	}
}
