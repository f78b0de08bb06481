package complydex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	candidateLimit   int
	historyRetention int
	suggestCacheTTL  time.Duration
	maxBatchSize     int
	workers          int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis Stack instance
// (RediSearch and RedisJSON modules are required).
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCandidateLimit bounds how many records are fetched per collection for a search.
// Default: 200.
func WithCandidateLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateLimit = n
	})
}

// WithHistoryRetention sets how many history entries are kept per user. Default: 100.
func WithHistoryRetention(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.historyRetention = n
	})
}

// WithSuggestCacheTTL sets the suggestion cache TTL. A negative value disables the cache.
// Default: 60s.
func WithSuggestCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.suggestCacheTTL = ttl
	})
}

// WithMaxBatchSize sets the maximum number of records per batch operation.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithWorkers sizes the pool that writes search history in the background. Default: 16.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client and search metrics on the given registerer.
// Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
