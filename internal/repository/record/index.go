package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/complydex/internal/db"
	"github.com/kailas-cloud/complydex/internal/domain"
	domrec "github.com/kailas-cloud/complydex/internal/domain/record"
)

// buildIndex describes the FT index over one record kind. Both kinds share
// a schema; fields a file never carries are simply absent from its documents.
func buildIndex(kind domrec.Kind) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName(kind)).
		OnJSON().
		Prefix(keyPrefix(kind)).
		Tag("$.department", "department").
		Tag("$.status", "status").
		Tag("$.priority", "priority").
		Tag("$.vendor", "vendor").
		Tag("$.contractType", "contractType").
		Tag("$.assignedManagers[*]", "assignedManagers").
		Tag("$.compliance[*]", "compliance").
		Numeric("$.amount", "amount").
		Numeric("$.createdAtMs", "createdAtMs").
		Numeric("$.updatedAtMs", "updatedAtMs").
		Numeric("$.expiryMs", "expiryMs").
		Text("$.displayName", "displayName").
		Build()
}

// EnsureIndexes creates the index of every record kind that does not exist yet.
// Existing indexes are left untouched.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, kind := range domrec.Kinds {
		def, err := buildIndex(kind)
		if err != nil {
			return fmt.Errorf("build index %s: %w", kind, err)
		}

		exists, err := r.store.IndexExists(ctx, def.Name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", def.Name, err)
		}
		if exists {
			continue
		}

		// Another replica may create it between the FT.INFO check and FT.CREATE.
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}

// HealthCheck fails when the index of any record kind is missing.
func (r *Repo) HealthCheck(ctx context.Context) error {
	for _, kind := range domrec.Kinds {
		name := indexName(kind)
		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		if !exists {
			return fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
		}
	}
	return nil
}
