package batch

import (
	"context"

	domrec "github.com/kailas-cloud/complydex/internal/domain/record"
)

// BulkUpserter writes many records in one round trip.
// The result holds one error (or nil) per record, in input order.
type BulkUpserter interface {
	UpsertMany(ctx context.Context, recs []domrec.Record) []error
}

// RecordDeleter deletes a record from storage.
type RecordDeleter interface {
	Delete(ctx context.Context, kind domrec.Kind, id string) error
}
