package queueaccess

import (
	"context"
	"path/filepath"
	"testing"

	"storyreel/internal/queue"
)

func openTestStore(t *testing.T) *queue.Store {
	t.Helper()
	store, err := queue.OpenPath(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAccessSubmitAndLookup(t *testing.T) {
	access := NewStoreAccess(openTestStore(t))
	ctx := context.Background()

	token, err := access.Submit(ctx, "explain how dns works", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if token == "" {
		t.Fatal("submit returned empty token")
	}

	job, err := access.DescribeToken(ctx, token)
	if err != nil {
		t.Fatalf("describe token: %v", err)
	}
	if job == nil || job.JobID != token {
		t.Fatalf("job = %+v", job)
	}

	byID, err := access.Describe(ctx, job.ID)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if byID == nil || byID.ID != job.ID {
		t.Fatalf("job by id = %+v", byID)
	}
}

func TestStoreAccessListAndStats(t *testing.T) {
	access := NewStoreAccess(openTestStore(t))
	ctx := context.Background()

	if _, err := access.Submit(ctx, "first prompt", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := access.Submit(ctx, "second prompt", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	jobs, err := access.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}

	filtered, err := access.List(ctx, []string{"completed", "bogus"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 0 {
		t.Fatalf("filtered = %d, want 0", len(filtered))
	}

	stats, err := access.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[string(queue.StatusPending)] != 2 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestOpenFallsBackToStore(t *testing.T) {
	store := openTestStore(t)
	session, err := OpenWithFallback(context.Background(),
		nil,
		func() (*queue.Store, error) { return store, nil },
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if session.ViaDaemon {
		t.Fatal("session should not report daemon backing")
	}
	if _, err := session.Access.Stats(context.Background()); err != nil {
		t.Fatalf("stats via fallback: %v", err)
	}
}

func TestOpenWithoutOpeners(t *testing.T) {
	if _, err := OpenWithFallback(context.Background(), nil, nil); err == nil {
		t.Fatal("missing store opener should error")
	}
}
