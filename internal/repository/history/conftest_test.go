package history

import (
	"context"
	"testing"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	lpushTrimFn func(ctx context.Context, key string, value []byte, maxLen int) error
	lrangeFn    func(ctx context.Context, key string, start, stop int) ([][]byte, error)
}

func (m *mockStore) LPushTrim(ctx context.Context, key string, value []byte, maxLen int) error {
	if m.lpushTrimFn != nil {
		return m.lpushTrimFn(ctx, key, value, maxLen)
	}
	return nil
}

func (m *mockStore) LRange(ctx context.Context, key string, start, stop int) ([][]byte, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func newTestRepo(t *testing.T, retention int) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, retention), ms
}
