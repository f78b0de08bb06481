package record

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/record"
)

// Service is the write path that keeps the searchable collections populated.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a record service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source used to stamp records.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upsert validates and stores rec under kind. Returns true if created.
func (s *Service) Upsert(ctx context.Context, kind record.Kind, rec *record.Record) (bool, error) {
	if err := Prepare(kind, rec, s.now()); err != nil {
		return false, err
	}
	created, err := s.repo.Upsert(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("upsert record: %w", err)
	}
	return created, nil
}

// Get returns a record by kind and ID.
func (s *Service) Get(ctx context.Context, kind record.Kind, id string) (record.Record, error) {
	if !kind.IsValid() {
		return record.Record{}, domain.NewValidation("kind", "unknown record type %q", kind)
	}
	rec, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return record.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, kind record.Kind, id string) error {
	if !kind.IsValid() {
		return domain.NewValidation("kind", "unknown record type %q", kind)
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// Prepare binds rec to kind, fills timestamps and validates it.
// Validation failures are *domain.ValidationError.
func Prepare(kind record.Kind, rec *record.Record, now time.Time) error {
	if !kind.IsValid() {
		return domain.NewValidation("kind", "unknown record type %q", kind)
	}
	if rec.Kind != "" && rec.Kind != kind {
		return domain.NewValidation("kind", "record type %q does not match path %q", rec.Kind, kind)
	}
	rec.Kind = kind
	rec.Stamp(now.UTC())
	if err := rec.Validate(); err != nil {
		return domain.NewValidation("record", "%v", err)
	}
	return nil
}
