package complydex

import (
	"context"

	dombatch "github.com/kailas-cloud/complydex/internal/domain/batch"
	"github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/saved"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
	"github.com/kailas-cloud/complydex/internal/domain/search/result"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	fn func(ctx context.Context, req *request.Request) (result.Page, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	return m.fn(ctx, req)
}

// --- suggestUseCase mock ---

type mockSuggestUC struct {
	fn func(ctx context.Context, query string) ([]string, error)
}

func (m *mockSuggestUC) Suggest(ctx context.Context, query string) ([]string, error) {
	return m.fn(ctx, query)
}

// --- recentUseCase mock ---

type mockRecentUC struct {
	fn func(ctx context.Context, userID string, limit int) ([]history.Recent, error)
}

func (m *mockRecentUC) Recent(ctx context.Context, userID string, limit int) ([]history.Recent, error) {
	return m.fn(ctx, userID, limit)
}

// --- savedUseCase mock ---

type mockSavedUC struct {
	saveFn   func(ctx context.Context, userID, name, query string, filters criteria.Filters) (saved.Search, error)
	listFn   func(ctx context.Context, userID string) ([]saved.Search, error)
	deleteFn func(ctx context.Context, id, userID string) error
}

func (m *mockSavedUC) Save(
	ctx context.Context, userID, name, query string, filters criteria.Filters,
) (saved.Search, error) {
	return m.saveFn(ctx, userID, name, query, filters)
}

func (m *mockSavedUC) List(ctx context.Context, userID string) ([]saved.Search, error) {
	return m.listFn(ctx, userID)
}

func (m *mockSavedUC) Delete(ctx context.Context, id, userID string) error {
	return m.deleteFn(ctx, id, userID)
}

// --- recordUseCase mock ---

type mockRecordUC struct {
	upsertFn func(ctx context.Context, kind record.Kind, rec *record.Record) (bool, error)
	getFn    func(ctx context.Context, kind record.Kind, id string) (record.Record, error)
	deleteFn func(ctx context.Context, kind record.Kind, id string) error
}

func (m *mockRecordUC) Upsert(ctx context.Context, kind record.Kind, rec *record.Record) (bool, error) {
	return m.upsertFn(ctx, kind, rec)
}

func (m *mockRecordUC) Get(ctx context.Context, kind record.Kind, id string) (record.Record, error) {
	return m.getFn(ctx, kind, id)
}

func (m *mockRecordUC) Delete(ctx context.Context, kind record.Kind, id string) error {
	return m.deleteFn(ctx, kind, id)
}

// --- batchUseCase mock ---

type mockBatchUC struct {
	upsertFn func(ctx context.Context, kind record.Kind, items []record.Record) []dombatch.Result
	deleteFn func(ctx context.Context, kind record.Kind, ids []string) []dombatch.Result
}

func (m *mockBatchUC) Upsert(ctx context.Context, kind record.Kind, items []record.Record) []dombatch.Result {
	return m.upsertFn(ctx, kind, items)
}

func (m *mockBatchUC) Delete(ctx context.Context, kind record.Kind, ids []string) []dombatch.Result {
	return m.deleteFn(ctx, kind, ids)
}

// --- infrastructure mocks ---

type mockIndexes struct {
	err   error
	calls int
}

func (m *mockIndexes) EnsureIndexes(_ context.Context) error {
	m.calls++
	return m.err
}

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }
func (m *mockStore) Close()                       { m.closed = true }

type mockDispatcher struct {
	err    error
	closed bool
}

func (m *mockDispatcher) Close(_ context.Context) error {
	m.closed = true
	return m.err
}
