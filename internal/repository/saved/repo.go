package saved

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/complydex/internal/db"
	"github.com/kailas-cloud/complydex/internal/domain"
	domsaved "github.com/kailas-cloud/complydex/internal/domain/saved"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
)

var (
	docKeyPrefix   = domain.KeyPrefix + "saved:"
	claimKeyPrefix = domain.KeyPrefix + "saved-name:"
	userKeyPrefix  = domain.KeyPrefix + "saved-user:"
)

// store is the consumer interface for saved searches (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Del(ctx context.Context, keys ...string) error
	ZAdd(ctx context.Context, key, member string, score float64) error
	ZRevRange(ctx context.Context, key string, start, stop int) ([]string, error)
	ZRem(ctx context.Context, key, member string) error
}

// Repo stores saved searches as hashes. A per-user name claim key enforces
// unique names and a per-user sorted set orders them by creation time.
type Repo struct {
	store  store
	logger *zap.Logger
}

// New creates a saved-search repository.
func New(s store, logger *zap.Logger) *Repo {
	return &Repo{store: s, logger: logger}
}

// Create claims the name for the user and persists s.
// A name already claimed by the same user yields *domain.DuplicateNameError.
func (r *Repo) Create(ctx context.Context, s *domsaved.Search) error {
	claim := claimKey(s.UserID, s.Name)
	ok, err := r.store.SetNX(ctx, claim, []byte(s.ID))
	if err != nil {
		return fmt.Errorf("claim name %s: %w", claim, err)
	}
	if !ok {
		return &domain.DuplicateNameError{Name: s.Name}
	}

	fields, err := toFields(s)
	if err != nil {
		r.release(ctx, claim)
		return err
	}

	key := docKeyPrefix + s.ID
	if err := r.store.HSet(ctx, key, fields); err != nil {
		r.release(ctx, claim)
		return fmt.Errorf("hset %s: %w", key, err)
	}

	if err := r.store.ZAdd(ctx, userKeyPrefix+s.UserID, s.ID, float64(s.CreatedAt.UnixMilli())); err != nil {
		r.release(ctx, claim, key)
		return fmt.Errorf("index saved search %s: %w", s.ID, err)
	}
	return nil
}

// Get returns a saved search by id.
func (r *Repo) Get(ctx context.Context, id string) (domsaved.Search, error) {
	key := docKeyPrefix + id
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsaved.Search{}, domain.ErrNotFound
		}
		return domsaved.Search{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return fromFields(fields)
}

// ListByUser returns the user's saved searches, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]domsaved.Search, error) {
	ids, err := r.store.ZRevRange(ctx, userKeyPrefix+userID, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list saved ids: %w", err)
	}
	if len(ids) == 0 {
		return []domsaved.Search{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKeyPrefix + id
	}
	docs, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load saved searches: %w", err)
	}

	out := make([]domsaved.Search, 0, len(docs))
	for _, fields := range docs {
		// Index members whose document vanished are skipped.
		if len(fields) == 0 {
			continue
		}
		s, err := fromFields(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Delete removes the document, its name claim and its index entry.
func (r *Repo) Delete(ctx context.Context, s *domsaved.Search) error {
	key := docKeyPrefix + s.ID
	if err := r.store.Del(ctx, key, claimKey(s.UserID, s.Name)); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.ZRem(ctx, userKeyPrefix+s.UserID, s.ID); err != nil {
		return fmt.Errorf("unindex saved search %s: %w", s.ID, err)
	}
	return nil
}

func (r *Repo) release(ctx context.Context, keys ...string) {
	if err := r.store.Del(ctx, keys...); err != nil {
		r.logger.Warn("saved search rollback failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// claimKey length-prefixes the user id so no (userID, name) pair shares a key with another.
func claimKey(userID, name string) string {
	return claimKeyPrefix + strconv.Itoa(len(userID)) + ":" + userID + ":" + name
}

func toFields(s *domsaved.Search) (map[string]string, error) {
	filters, err := json.Marshal(s.Filters)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}
	return map[string]string{
		"id":          s.ID,
		"userId":      s.UserID,
		"name":        s.Name,
		"query":       s.Query,
		"filters":     string(filters),
		"createdAtMs": strconv.FormatInt(s.CreatedAt.UnixMilli(), 10),
	}, nil
}

func fromFields(fields map[string]string) (domsaved.Search, error) {
	var filters criteria.Filters
	if raw := fields["filters"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			return domsaved.Search{}, fmt.Errorf("unmarshal filters of %s: %w", fields["id"], err)
		}
	}
	ms, err := strconv.ParseInt(fields["createdAtMs"], 10, 64)
	if err != nil {
		return domsaved.Search{}, fmt.Errorf("parse createdAtMs of %s: %w", fields["id"], err)
	}
	return domsaved.Search{
		ID:        fields["id"],
		UserID:    fields["userId"],
		Name:      fields["name"],
		Query:     fields["query"],
		Filters:   filters,
		CreatedAt: time.UnixMilli(ms).UTC(),
	}, nil
}
