package history

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/history"
)

// --- Mocks ---

type mockRepo struct {
	entries  []history.Entry
	listErr  error
	appended []history.Entry
}

func (m *mockRepo) Append(_ context.Context, e *history.Entry) error {
	m.appended = append(m.appended, *e)
	return nil
}

func (m *mockRepo) List(_ context.Context, _ string) ([]history.Entry, error) {
	return m.entries, m.listErr
}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func entry(q string, minutesAgo, count int) history.Entry {
	return history.Entry{
		UserID:      "u1",
		Query:       q,
		ResultCount: count,
		Timestamp:   t0.Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

// --- Tests ---

func TestRecent_DedupesNewestFirst(t *testing.T) {
	repo := &mockRepo{entries: []history.Entry{
		entry("acme", 1, 3),
		entry("beta", 2, 1),
		entry("acme", 3, 9),
		entry("", 4, 40),
		entry("gamma", 5, 0),
	}}
	svc := New(repo)

	got, err := svc.Recent(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	queries := []string{got[0].Query, got[1].Query, got[2].Query, got[3].Query}
	if want := []string{"acme", "beta", "", "gamma"}; !slices.Equal(queries, want) {
		t.Errorf("queries = %q, want %q", queries, want)
	}
	if got[0].ResultCount != 3 {
		t.Errorf("ResultCount = %d, want 3 (first occurrence wins)", got[0].ResultCount)
	}
	if !got[0].Timestamp.Equal(t0.Add(-time.Minute)) {
		t.Errorf("Timestamp = %v", got[0].Timestamp)
	}
}

func TestRecent_Limit(t *testing.T) {
	var entries []history.Entry
	for i := 0; i < 30; i++ {
		entries = append(entries, entry(string(rune('a'+i%26))+"q", i, i))
	}
	svc := New(&mockRepo{entries: entries})

	got, err := svc.Recent(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != history.DefaultRecentLimit {
		t.Errorf("len = %d, want %d", len(got), history.DefaultRecentLimit)
	}

	got, err = svc.Recent(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Query != "aq" {
		t.Errorf("first = %q, want aq", got[0].Query)
	}
}

func TestRecent_Validation(t *testing.T) {
	svc := New(&mockRepo{})

	tests := []struct {
		name   string
		userID string
		limit  int
		param  string
	}{
		{"no user", "", 5, "userId"},
		{"negative limit", "u1", -1, "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Recent(context.Background(), tt.userID, tt.limit)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Param != tt.param {
				t.Errorf("param = %q, want %q", ve.Param, tt.param)
			}
		})
	}
}

func TestRecent_RepoError(t *testing.T) {
	svc := New(&mockRepo{listErr: errors.New("timeout")})

	_, err := svc.Recent(context.Background(), "u1", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "list history") {
		t.Errorf("error = %q", err)
	}
}

func TestRecent_Empty(t *testing.T) {
	svc := New(&mockRepo{})

	got, err := svc.Recent(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestAppend(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	e := entry("acme", 0, 2)
	if err := svc.Append(context.Background(), &e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.appended) != 1 {
		t.Errorf("appended = %d, want 1", len(repo.appended))
	}

	anon := history.Entry{Query: "x"}
	if err := svc.Append(context.Background(), &anon); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
