package complydex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/complydex/internal/db/redis"
	dombatch "github.com/kailas-cloud/complydex/internal/domain/batch"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
	"github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/saved"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
	"github.com/kailas-cloud/complydex/internal/domain/search/result"
	"github.com/kailas-cloud/complydex/internal/metrics"
	historyrepo "github.com/kailas-cloud/complydex/internal/repository/history"
	recordrepo "github.com/kailas-cloud/complydex/internal/repository/record"
	savedrepo "github.com/kailas-cloud/complydex/internal/repository/saved"
	"github.com/kailas-cloud/complydex/internal/repository/suggestcache"
	batchuc "github.com/kailas-cloud/complydex/internal/usecase/batch"
	historyuc "github.com/kailas-cloud/complydex/internal/usecase/history"
	recorduc "github.com/kailas-cloud/complydex/internal/usecase/record"
	saveduc "github.com/kailas-cloud/complydex/internal/usecase/saved"
	searchuc "github.com/kailas-cloud/complydex/internal/usecase/search"
	"github.com/kailas-cloud/complydex/internal/worker"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
}

type suggestUseCase interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

type recentUseCase interface {
	Recent(ctx context.Context, userID string, limit int) ([]history.Recent, error)
}

type savedUseCase interface {
	Save(ctx context.Context, userID, name, query string, filters criteria.Filters) (saved.Search, error)
	List(ctx context.Context, userID string) ([]saved.Search, error)
	Delete(ctx context.Context, id, userID string) error
}

type recordUseCase interface {
	Upsert(ctx context.Context, kind record.Kind, rec *record.Record) (bool, error)
	Get(ctx context.Context, kind record.Kind, id string) (record.Record, error)
	Delete(ctx context.Context, kind record.Kind, id string) error
}

type batchUseCase interface {
	Upsert(ctx context.Context, kind record.Kind, items []record.Record) []dombatch.Result
	Delete(ctx context.Context, kind record.Kind, ids []string) []dombatch.Result
}

type indexManager interface {
	EnsureIndexes(ctx context.Context) error
}

type closer interface {
	Close(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the complydex entry point for embedding the search engine in-process.
type Client struct {
	store      pinger
	dispatcher closer
	indexes    indexManager
	searchSvc  searchUseCase
	suggestSvc suggestUseCase
	recentSvc  recentUseCase
	savedSvc   savedUseCase
	recordSvc  recordUseCase
	batchSvc   batchUseCase
	obs        *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("complydex: database address required (use WithRedis)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("complydex: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("complydex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	recordRepo := recordrepo.New(store)
	historyRepo := historyrepo.New(store, cfg.historyRetention)
	savedRepo := savedrepo.New(store, cfg.logger)

	var (
		telemetry searchuc.Telemetry
		failures  = metrics.BackgroundFailuresTotal
		cacheHits = metrics.SuggestCacheTotal
	)
	if cfg.metricsReg != nil {
		metrics.RegisterSearchMetrics(cfg.metricsReg)
		telemetry = metrics.NewSearchRecorder(nil)
	} else {
		failures, cacheHits = nil, nil
	}

	dispatcher, err := worker.New(cfg.workers, worker.DefaultTaskTimeout, failures, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("complydex: %w", err)
	}

	historySvc := historyuc.New(historyRepo)
	searchSvc := searchuc.New(recordRepo, dispatcher, historySvc, telemetry, cfg.logger).
		WithCandidateLimit(cfg.candidateLimit)

	var suggester suggestUseCase = searchSvc
	if cfg.suggestCacheTTL >= 0 {
		suggester = suggestcache.New(searchSvc, store, cfg.suggestCacheTTL, cacheHits, cfg.logger)
	}

	batchSvc := batchuc.New(recordRepo, recordRepo)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	return &Client{
		store:      store,
		dispatcher: dispatcher,
		indexes:    recordRepo,
		searchSvc:  searchSvc,
		suggestSvc: suggester,
		recentSvc:  historySvc,
		savedSvc:   saveduc.New(savedRepo),
		recordSvc:  recorduc.New(recordRepo),
		batchSvc:   batchSvc,
		obs:        obs,
	}, nil
}

// Close waits up to ctx for pending history writes, then releases the connection.
func (c *Client) Close(ctx context.Context) error {
	var err error
	if c.dispatcher != nil {
		err = c.dispatcher.Close(ctx)
	}
	if c.store != nil {
		c.store.Close()
	}
	return err
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndexes creates the contract and file search indexes when missing.
func (c *Client) EnsureIndexes(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_indexes", start, err) }()

	return c.indexes.EnsureIndexes(ctx)
}

// Search runs a text search over contracts and files.
func (c *Client) Search(ctx context.Context, p SearchParams) (page SearchPage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	req, err := request.New(p.Query, p.UserID, p.Filters, p.SortBy, p.SortOrder, p.Limit, p.Offset)
	if err != nil {
		return SearchPage{}, err
	}
	return c.searchSvc.Search(ctx, &req)
}

// Suggest returns up to ten completions for a partial query.
func (c *Client) Suggest(ctx context.Context, query string) (list []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, err) }()

	return c.suggestSvc.Suggest(ctx, query)
}

// Recent returns the user's latest distinct searches. limit 0 means the default.
func (c *Client) Recent(ctx context.Context, userID string, limit int) (list []RecentSearch, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recent", start, err) }()

	return c.recentSvc.Recent(ctx, userID, limit)
}

// SaveSearch stores a named query with filters for userID.
func (c *Client) SaveSearch(
	ctx context.Context, userID, name, query string, filters Filters,
) (s SavedSearch, err error) {
	start := time.Now()
	defer func() { c.obs.observe("save_search", start, err) }()

	return c.savedSvc.Save(ctx, userID, name, query, filters)
}

// ListSavedSearches returns the user's saved searches, newest first.
func (c *Client) ListSavedSearches(ctx context.Context, userID string) (list []SavedSearch, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_saved_searches", start, err) }()

	return c.savedSvc.List(ctx, userID)
}

// DeleteSavedSearch removes a saved search owned by userID.
func (c *Client) DeleteSavedSearch(ctx context.Context, id, userID string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_saved_search", start, err) }()

	return c.savedSvc.Delete(ctx, id, userID)
}

// UpsertRecord creates or replaces a record. Returns true if it was created.
func (c *Client) UpsertRecord(ctx context.Context, kind Kind, rec *Record) (created bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert_record", start, err) }()

	return c.recordSvc.Upsert(ctx, kind, rec)
}

// GetRecord returns one record.
func (c *Client) GetRecord(ctx context.Context, kind Kind, id string) (rec Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_record", start, err) }()

	return c.recordSvc.Get(ctx, kind, id)
}

// DeleteRecord removes one record.
func (c *Client) DeleteRecord(ctx context.Context, kind Kind, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_record", start, err) }()

	return c.recordSvc.Delete(ctx, kind, id)
}

// UpsertRecords writes a batch of records of one kind and reports per-item results.
func (c *Client) UpsertRecords(ctx context.Context, kind Kind, recs []Record) []BatchResult {
	start := time.Now()
	results := c.batchSvc.Upsert(ctx, kind, recs)
	c.obs.observe("upsert_records", start, firstError(results))
	return results
}

// DeleteRecords removes a batch of records of one kind and reports per-item results.
func (c *Client) DeleteRecords(ctx context.Context, kind Kind, ids []string) []BatchResult {
	start := time.Now()
	results := c.batchSvc.Delete(ctx, kind, ids)
	c.obs.observe("delete_records", start, firstError(results))
	return results
}

func firstError(results []BatchResult) error {
	for _, r := range results {
		if r.Err() != nil {
			return r.Err()
		}
	}
	return nil
}
