package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/complydex/internal/domain"
	domhist "github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
)

// DefaultRetention is how many entries are kept per user when none is configured.
const DefaultRetention = 100

var historyKeyPrefix = domain.KeyPrefix + "history:"

// store is the consumer interface for search history (ISP).
type store interface {
	LPushTrim(ctx context.Context, key string, value []byte, maxLen int) error
	LRange(ctx context.Context, key string, start, stop int) ([][]byte, error)
}

// Repo keeps a capped, newest-first list of search entries per user.
type Repo struct {
	store     store
	retention int
}

// New creates a history repository. retention <= 0 means DefaultRetention.
func New(s store, retention int) *Repo {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Repo{store: s, retention: retention}
}

type entryDoc struct {
	Query       string           `json:"query"`
	Filters     criteria.Filters `json:"filters"`
	ResultCount int              `json:"resultCount"`
	TimestampMs int64            `json:"ts"`
}

// Append prepends e to the user's list and drops entries beyond retention.
func (r *Repo) Append(ctx context.Context, e *domhist.Entry) error {
	if e.UserID == "" {
		return errors.New("history entry without user")
	}
	data, err := json.Marshal(entryDoc{
		Query:       e.Query,
		Filters:     e.Filters,
		ResultCount: e.ResultCount,
		TimestampMs: e.Timestamp.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	key := historyKeyPrefix + e.UserID
	if err := r.store.LPushTrim(ctx, key, data, r.retention); err != nil {
		return fmt.Errorf("append history %s: %w", key, err)
	}
	return nil
}

// List returns every retained entry of userID, newest first.
// Undecodable entries are skipped.
func (r *Repo) List(ctx context.Context, userID string) ([]domhist.Entry, error) {
	key := historyKeyPrefix + userID
	raw, err := r.store.LRange(ctx, key, 0, r.retention-1)
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", key, err)
	}

	out := make([]domhist.Entry, 0, len(raw))
	for _, b := range raw {
		var d entryDoc
		if err := json.Unmarshal(b, &d); err != nil {
			continue
		}
		out = append(out, domhist.Entry{
			UserID:      userID,
			Query:       d.Query,
			Filters:     d.Filters,
			ResultCount: d.ResultCount,
			Timestamp:   time.UnixMilli(d.TimestampMs).UTC(),
		})
	}
	return out, nil
}
