package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/complydex/internal/domain"
	dombatch "github.com/kailas-cloud/complydex/internal/domain/batch"
	domrec "github.com/kailas-cloud/complydex/internal/domain/record"
	recuc "github.com/kailas-cloud/complydex/internal/usecase/record"
)

// Service handles batch record operations with per-item error reporting.
type Service struct {
	bulk         BulkUpserter
	del          RecordDeleter
	now          func() time.Time
	maxBatchSize int
}

// New creates a batch service.
func New(bulk BulkUpserter, del RecordDeleter) *Service {
	return &Service{
		bulk: bulk, del: del,
		now:          time.Now,
		maxBatchSize: dombatch.MaxSize,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithClock replaces the time source used to stamp records.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upsert validates all items and stores the valid ones in a single pipeline.
// Invalid items fail individually and never block the rest.
func (s *Service) Upsert(ctx context.Context, kind domrec.Kind, items []domrec.Record) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		return s.rejectAll(recordIDs(items))
	}

	now := s.now()
	valid := make([]domrec.Record, 0, len(items))
	validIdx := make([]int, 0, len(items))

	for i := range items {
		if err := recuc.Prepare(kind, &items[i], now); err != nil {
			results[i] = dombatch.NewError(items[i].ID, err)
			continue
		}
		valid = append(valid, items[i])
		validIdx = append(validIdx, i)
	}

	if len(valid) == 0 {
		return results
	}

	errs := s.bulk.UpsertMany(ctx, valid)
	for j, i := range validIdx {
		if errs[j] != nil {
			results[i] = dombatch.NewError(items[i].ID, fmt.Errorf("upsert: %w", errs[j]))
			continue
		}
		results[i] = dombatch.NewOK(items[i].ID)
	}
	return results
}

// Delete removes records by ID in batch.
func (s *Service) Delete(ctx context.Context, kind domrec.Kind, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		return s.rejectAll(ids)
	}
	if !kind.IsValid() {
		for i, id := range ids {
			results[i] = dombatch.NewError(id, domain.NewValidation("kind", "unknown record type %q", kind))
		}
		return results
	}

	for i, id := range ids {
		if err := s.del.Delete(ctx, kind, id); err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("delete: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(id)
	}
	return results
}

func (s *Service) rejectAll(ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))
	for i, id := range ids {
		results[i] = dombatch.NewError(id, domain.NewValidation("items", "batch size exceeds %d", s.maxBatchSize))
	}
	return results
}

func recordIDs(items []domrec.Record) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}
