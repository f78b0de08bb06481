package record

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/complydex/internal/db"
	dbredis "github.com/kailas-cloud/complydex/internal/db/redis"
	"github.com/kailas-cloud/complydex/internal/domain"
	domrec "github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/search/filter"
	"github.com/kailas-cloud/complydex/internal/domain/search/ordering"
)

// store is the consumer interface for records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) []error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo stores contracts and files as JSON documents, one FT index per kind.
type Repo struct {
	store store
}

// New creates a record repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert creates or replaces a record. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, rec *domrec.Record) (bool, error) {
	key := recordKey(rec.Kind, rec.ID)
	data, err := marshalRecord(rec)
	if err != nil {
		return false, err
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}

	return !exists, nil
}

// UpsertMany writes records in one pipeline. The result holds one error (or nil) per record.
func (r *Repo) UpsertMany(ctx context.Context, recs []domrec.Record) []error {
	errs := make([]error, len(recs))
	items := make([]db.JSONSetItem, 0, len(recs))
	pos := make([]int, 0, len(recs))

	for i := range recs {
		data, err := marshalRecord(&recs[i])
		if err != nil {
			errs[i] = err
			continue
		}
		items = append(items, db.JSONSetItem{Key: recordKey(recs[i].Kind, recs[i].ID), Path: "$", Data: data})
		pos = append(pos, i)
	}

	for j, err := range r.store.JSONSetMulti(ctx, items) {
		errs[pos[j]] = err
	}
	return errs
}

// Get returns a record by kind and ID.
func (r *Repo) Get(ctx context.Context, kind domrec.Kind, id string) (domrec.Record, error) {
	key := recordKey(kind, id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrec.Record{}, domain.ErrNotFound
		}
		return domrec.Record{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return unmarshalRecord(raw)
}

// Delete removes a record.
func (r *Repo) Delete(ctx context.Context, kind domrec.Kind, id string) error {
	key := recordKey(kind, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// List fetches up to limit records of kind matching expr, ordered at the
// fetch layer by sortBy. Store failures are reported as UpstreamFetchError.
func (r *Repo) List(
	ctx context.Context, kind domrec.Kind, expr filter.Expression,
	sortBy ordering.Field, order ordering.Order, limit int,
) ([]domrec.Record, error) {
	q := &db.ListQuery{
		IndexName:  indexName(kind),
		Filters:    expr,
		SortBy:     sortBy.IndexAlias(),
		Descending: order == ordering.Desc,
		Limit:      limit,
	}

	res, err := r.store.SearchList(ctx, q)
	if err != nil {
		return nil, upstream(kind, err)
	}
	if res == nil {
		return nil, nil
	}

	out := make([]domrec.Record, 0, len(res.Entries))
	for _, entry := range res.Entries {
		doc, ok := dbredis.JSONDocument(entry)
		if !ok {
			continue
		}
		rec, err := unmarshalRecord([]byte(doc))
		if err != nil {
			return nil, domain.NewUpstreamFetch(kind.Collection(), domain.UpstreamStorage,
				fmt.Errorf("decode %s: %w", entry.Key, err))
		}
		if rec.ID == "" {
			rec.ID = extractID(entry.Key, kind)
		}
		out = append(out, rec)
	}
	return out, nil
}

func upstream(kind domrec.Kind, err error) error {
	fallback := domain.UpstreamUnavailable
	if errors.Is(err, db.ErrServer) {
		fallback = domain.UpstreamStorage
	}
	return domain.NewUpstreamFetch(kind.Collection(), fallback, err)
}

func recordKey(kind domrec.Kind, id string) string {
	return keyPrefix(kind) + id
}

func keyPrefix(kind domrec.Kind) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, kind)
}

func indexName(kind domrec.Kind) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, kind)
}

func extractID(key string, kind domrec.Kind) string {
	return strings.TrimPrefix(key, keyPrefix(kind))
}
