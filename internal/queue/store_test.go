package queue_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"storyreel/internal/queue"
)

func openStore(t *testing.T) *queue.Store {
	t.Helper()
	store, err := queue.OpenPath(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewJobDefaults(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "Explain how Dijkstra's algorithm works", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("status = %q, want pending", job.Status)
	}
	if job.Token == "" {
		t.Fatal("token should be assigned")
	}
	if job.Title == "" {
		t.Fatal("title should be inferred from the prompt")
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Fatal("timestamps should be set")
	}
}

func TestNewJobRejectsEmptyPrompt(t *testing.T) {
	store := openStore(t)
	if _, err := store.NewJob(context.Background(), "   ", ""); err == nil {
		t.Fatal("empty prompt should be rejected")
	}
}

func TestGetByToken(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	created, err := store.NewJob(ctx, "supply chains", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	fetched, err := store.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if fetched == nil || fetched.ID != created.ID {
		t.Fatalf("GetByToken returned %+v, want job %d", fetched, created.ID)
	}

	missing, err := store.GetByToken(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("GetByToken(missing): %v", err)
	}
	if missing != nil {
		t.Fatal("missing token should return nil job")
	}
}

func TestUpdatePersistsArtifacts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "neural networks", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	job.Status = queue.StatusScripted
	job.StoryboardText = "1?Intro?NO_NODE?NO_NODE"
	job.Description = "An explainer about neural networks."
	if err := job.SetSubheadings([]queue.Subheading{{Heading: "Intro", Text: "Basics"}}); err != nil {
		t.Fatalf("SetSubheadings: %v", err)
	}
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusScripted {
		t.Fatalf("status = %q, want scripted", fetched.Status)
	}
	if fetched.StoryboardText != job.StoryboardText {
		t.Fatalf("storyboard text not persisted")
	}
	subs := fetched.Subheadings()
	if len(subs) != 1 || subs[0].Heading != "Intro" {
		t.Fatalf("subheadings = %+v", subs)
	}
}

func TestNextForStatusesClaimsOldest(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.NewJob(ctx, "first prompt", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if _, err := store.NewJob(ctx, "second prompt", ""); err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("claimed job %+v, want oldest (%d)", next, first.ID)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusAssembling)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if none != nil {
		t.Fatal("no assembling job should exist")
	}
}

func TestRetryFailed(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "retry me", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	job.SetFailed("tts exploded")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if count != 1 {
		t.Fatalf("retried %d jobs, want 1", count)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusPending {
		t.Fatalf("status = %q, want pending", fetched.Status)
	}
	if fetched.ErrorMessage != "" {
		t.Fatalf("error message should be cleared, got %q", fetched.ErrorMessage)
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "stale job", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	stale := time.Now().Add(-time.Hour).UTC()
	job.Status = queue.StatusAnimating
	job.LastHeartbeat = &stale
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing: %v", err)
	}
	if count != 1 {
		t.Fatalf("reclaimed %d jobs, want 1", count)
	}
	fetched, _ := store.GetByID(ctx, job.ID)
	if fetched.Status != queue.StatusPending {
		t.Fatalf("status = %q, want pending", fetched.Status)
	}
}

func TestHealthSummary(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.NewJob(ctx, "pending one", ""); err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	failed, err := store.NewJob(ctx, "failing one", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Failed != 1 {
		t.Fatalf("health = %+v", health)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Animating "); !ok || status != queue.StatusAnimating {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("ripping"); ok {
		t.Fatal("unknown status should not parse")
	}
}
