package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestMigrationCreatesTable(t *testing.T) {
	s := openTestStore(t)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='request_events'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if name != "request_events" {
		t.Errorf("table name = %q, want 'request_events'", name)
	}
}

func TestAppendAndRecentRequests(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo().(*eventRepo)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	calls := []RequestEventData{
		{Method: "POST", Path: "/api/auth/register", Status: 201, LatencyMs: 12, Success: true},
		{Method: "POST", Path: "/api/auth/verify-phone", Status: 400, LatencyMs: 8, ErrorMessage: "Invalid code"},
		{Method: "GET", Path: "/api/admin/dashboard", Status: 200, LatencyMs: 30, Success: true},
	}
	for _, c := range calls {
		if err := repo.AppendRequest(ctx, c); err != nil {
			t.Fatalf("append %s: %v", c.Path, err)
		}
	}

	events, err := repo.RecentRequests(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Path != "/api/admin/dashboard" {
		t.Errorf("newest path = %q, want dashboard", events[0].Path)
	}
	if events[1].Success || events[1].ErrorMessage != "Invalid code" || events[1].Status != 400 {
		t.Errorf("failed event = %+v", events[1])
	}
	if !events[2].Timestamp.Equal(base.Add(time.Second)) {
		t.Errorf("oldest timestamp = %v, want %v", events[2].Timestamp, base.Add(time.Second))
	}
	if events[0].Sequence <= events[1].Sequence {
		t.Errorf("sequences not descending: %d, %d", events[0].Sequence, events[1].Sequence)
	}

	limited, err := repo.RecentRequests(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("recent limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Path != "/api/admin/dashboard" {
		t.Errorf("limited = %+v", limited)
	}

	after, err := repo.RecentRequests(ctx, QueryOpts{After: events[1].Sequence})
	if err != nil {
		t.Fatalf("recent after: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("after filter returned %d events, want 1", len(after))
	}

	window, err := repo.RecentRequests(ctx, QueryOpts{
		From: base.Add(2 * time.Second),
		To:   base.Add(2 * time.Second),
	})
	if err != nil {
		t.Fatalf("recent window: %v", err)
	}
	if len(window) != 1 || window[0].Path != "/api/auth/verify-phone" {
		t.Errorf("window = %+v", window)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	for i := 0; i < 5; i++ {
		if err := repo.AppendRequest(ctx, RequestEventData{Method: "GET", Path: "/x", Success: true}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := repo.Prune(ctx, 2); err != nil {
		t.Fatalf("prune: %v", err)
	}

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM request_events").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("remaining events = %d, want 2", count)
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	st, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats on empty log: %v", err)
	}
	if st != (RequestStats{}) {
		t.Errorf("empty stats = %+v", st)
	}

	for _, ok := range []bool{true, false, true, false, false} {
		if err := repo.AppendRequest(ctx, RequestEventData{Method: "POST", Path: "/api/payments", Success: ok}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	st, err = repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 5 || st.Failed != 3 {
		t.Errorf("stats = %+v, want 5 total, 3 failed", st)
	}
}
