package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/coordinator"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Adapter: "A", Mode: "text", Input: "one", Result: "r1", CreatedAt: base},
		{Adapter: "B", Mode: "file", Input: "/x.png", Result: "r2", CreatedAt: base.Add(time.Minute)},
		{Adapter: "A", Mode: "text", Input: "three", Error: "boom", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if _, err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0].Input != "three" || got[0].OK() {
		t.Errorf("newest = %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("created_at = %v", got[0].CreatedAt)
	}

	onlyA, err := s.Recent(ctx, "A", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyA) != 2 {
		t.Errorf("adapter filter returned %d entries", len(onlyA))
	}

	limited, _ := s.Recent(ctx, "", 1)
	if len(limited) != 1 {
		t.Errorf("limit returned %d entries", len(limited))
	}
}

func TestRecord_RequiresAdapter(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Record(context.Background(), Entry{}); err == nil {
		t.Error("expected error for entry without adapter")
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := s.Record(ctx, Entry{Adapter: "A", CreatedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 3 {
		t.Errorf("pruned %d, want 3", n)
	}
	if c, _ := s.Count(ctx); c != 2 {
		t.Errorf("count = %d, want 2", c)
	}
}

func TestFromResult(t *testing.T) {
	at := time.Now()
	ok := coordinator.Result{
		Request: coordinator.Request{Adapter: "T2I", Payload: adapter.TextPayload("fox")},
		Output:  adapter.Output{adapter.KeyResult: "done", adapter.KeyArtifact: "/a.png", adapter.KeyElapsed: 12.5},
		Elapsed: 12.5,
	}
	e := FromResult(ok, at)
	if e.Adapter != "T2I" || e.Mode != "text" || e.Input != "fox" || e.Result != "done" || e.Artifact != "/a.png" {
		t.Errorf("entry = %+v", e)
	}
	if e.Output == "" || e.ElapsedMS != 12.5 {
		t.Errorf("output=%q elapsed=%v", e.Output, e.ElapsedMS)
	}

	failed := coordinator.Result{
		Request: coordinator.Request{Adapter: "X", Payload: adapter.TextPayload("y")},
		Err:     &adapter.RunError{Name: "X", Cause: errors.New("bad")},
	}
	if e := FromResult(failed, at); e.OK() || e.Result != "" {
		t.Errorf("failed entry = %+v", e)
	}
}
