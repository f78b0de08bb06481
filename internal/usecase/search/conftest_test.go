package search

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/complydex/internal/domain/history"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/search/criteria"
	"github.com/kailas-cloud/complydex/internal/domain/search/filter"
	"github.com/kailas-cloud/complydex/internal/domain/search/ordering"
	"github.com/kailas-cloud/complydex/internal/worker"
)

// --- Mocks ---

// mockSource serves records per kind and evaluates fetch expressions the way
// the index does: tag conditions by exact value, ranges on numeric mirrors.
type mockSource struct {
	mu      sync.Mutex
	records map[record.Kind][]record.Record
	errs    map[record.Kind]error
	calls   map[record.Kind]int
	limits  []int
}

func newMockSource(recs ...record.Record) *mockSource {
	m := &mockSource{
		records: make(map[record.Kind][]record.Record),
		errs:    make(map[record.Kind]error),
		calls:   make(map[record.Kind]int),
	}
	for _, r := range recs {
		m.records[r.Kind] = append(m.records[r.Kind], r)
	}
	return m
}

func (m *mockSource) List(
	_ context.Context, kind record.Kind, expr filter.Expression,
	_ ordering.Field, _ ordering.Order, limit int,
) ([]record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[kind]++
	m.limits = append(m.limits, limit)
	if err := m.errs[kind]; err != nil {
		return nil, err
	}
	var out []record.Record
	for _, r := range m.records[kind] {
		if evalExpr(expr, &r) {
			out = append(out, r.Clone())
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockSource) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func evalExpr(expr filter.Expression, rec *record.Record) bool {
	for _, c := range expr.Must() {
		if c.IsMatch() {
			if !slices.ContainsFunc(tagValues(rec, c.Key()), func(v string) bool {
				return slices.Contains(c.Values(), v)
			}) {
				return false
			}
			continue
		}
		v, ok := numericValue(rec, c.Key())
		if !ok || !c.Range().Contains(v) {
			return false
		}
	}
	return true
}

func tagValues(rec *record.Record, key string) []string {
	switch key {
	case criteria.FieldDepartment:
		return []string{rec.Department}
	case criteria.FieldStatus:
		return []string{rec.Status}
	case criteria.FieldPriority:
		return []string{rec.Priority}
	case criteria.FieldVendor:
		return []string{rec.Vendor}
	case criteria.FieldContractType:
		return []string{rec.ContractType}
	case criteria.FieldAssignedManagers:
		return rec.AssignedManagers
	case criteria.FieldCompliance:
		return rec.Compliance
	}
	return nil
}

func numericValue(rec *record.Record, key string) (float64, bool) {
	switch key {
	case criteria.FieldAmount:
		if rec.Amount == nil {
			return 0, false
		}
		return *rec.Amount, true
	case criteria.FieldCreatedAt:
		return float64(rec.CreatedAt.UnixMilli()), true
	case criteria.FieldUpdatedAt:
		return float64(rec.UpdatedAt.UnixMilli()), true
	case criteria.FieldExpiry:
		t, ok := rec.ExpiryTime()
		return float64(t.UnixMilli()), ok
	}
	return 0, false
}

// inlineDispatcher runs tasks synchronously and remembers their outcome.
type inlineDispatcher struct {
	mu     sync.Mutex
	names  []string
	errors []error
}

func (d *inlineDispatcher) Go(ctx context.Context, name string, task worker.Task) {
	err := task(ctx)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
	d.errors = append(d.errors, err)
}

type mockHistory struct {
	entries []history.Entry
	err     error
}

func (m *mockHistory) Append(_ context.Context, e *history.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *e)
	return nil
}

type mockTelemetry struct {
	calls int
	total int
}

func (m *mockTelemetry) RecordSearch(_ context.Context, _, _ string, total int, _ time.Duration) error {
	m.calls++
	m.total = total
	return nil
}

// --- Fixtures ---

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return baseTime.AddDate(0, 0, n) }

func amount(v float64) *float64 { return &v }

func contract(id string, created time.Time, mutate func(*record.Record)) record.Record {
	r := record.Record{
		ID:        id,
		Kind:      record.KindContract,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func file(id string, created time.Time, mutate func(*record.Record)) record.Record {
	r := contract(id, created, mutate)
	r.Kind = record.KindFile
	return r
}

type testEnv struct {
	svc        *Service
	source     *mockSource
	dispatcher *inlineDispatcher
	history    *mockHistory
	telemetry  *mockTelemetry
}

func newTestEnv(t *testing.T, recs ...record.Record) *testEnv {
	t.Helper()
	env := &testEnv{
		source:     newMockSource(recs...),
		dispatcher: &inlineDispatcher{},
		history:    &mockHistory{},
		telemetry:  &mockTelemetry{},
	}
	env.svc = New(env.source, env.dispatcher, env.history, env.telemetry, zap.NewNop()).
		WithClock(func() time.Time { return day(100) })
	return env
}
