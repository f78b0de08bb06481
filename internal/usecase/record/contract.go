package record

import (
	"context"

	"github.com/kailas-cloud/complydex/internal/domain/record"
)

// Repository defines the storage contract for records.
type Repository interface {
	Upsert(ctx context.Context, rec *record.Record) (created bool, err error)
	Get(ctx context.Context, kind record.Kind, id string) (record.Record, error)
	Delete(ctx context.Context, kind record.Kind, id string) error
}
