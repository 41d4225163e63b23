package animator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/render"
	"storyreel/internal/services"
)

// wireSample expands to four reveal steps: one caption step, two node
// reveals, one connection draw.
const wireSample = "intro?Welcome to graph basics?NO_NODE?NO_NODE$graph?Two nodes connect?circle:blue:a,box:green:b?0:1"

type fakeAdapter struct {
	mu       sync.Mutex
	requests []render.Request
	err      error
}

func (f *fakeAdapter) RenderStep(ctx context.Context, req render.Request) (render.Segment, error) {
	if err := ctx.Err(); err != nil {
		return render.Segment{}, err
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return render.Segment{}, f.err
	}
	path := filepath.Join(req.OutDir, fmt.Sprintf("step_%04d_%04d.mp4", req.Frame.FrameIndex, req.Frame.StepIndex))
	return render.Segment{
		FrameIndex: req.Frame.FrameIndex,
		StepIndex:  req.Frame.StepIndex,
		Path:       path,
		Duration:   req.Duration,
	}, nil
}

func newTestAnimator(t *testing.T, adapter render.Adapter) (*Animator, *queue.Job) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Queue.DBPath = filepath.Join(base, "queue.db")
	cfg.Video.RenderWorkers = 2

	store, err := queue.OpenPath(cfg.Queue.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job, err := store.NewJob(context.Background(), "explain graphs", "")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.StoryboardText = wireSample

	return NewWithAdapter(&cfg, store, logging.NewNop(), adapter), job
}

func TestExecuteRendersAllRevealSteps(t *testing.T) {
	adapter := &fakeAdapter{}
	a, job := newTestAnimator(t, adapter)

	if err := a.Prepare(context.Background(), job); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := a.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(adapter.requests) != 4 {
		t.Fatalf("render calls = %d, want 4", len(adapter.requests))
	}
	if job.SegmentsDir == "" {
		t.Fatal("segments dir not recorded")
	}
	if job.ProgressPercent != 100 {
		t.Fatalf("progress = %v, want 100", job.ProgressPercent)
	}

	segments, err := ReadManifest(job.SegmentsDir)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(segments) != 4 {
		t.Fatalf("manifest segments = %d, want 4", len(segments))
	}
	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		if cur.FrameIndex < prev.FrameIndex ||
			(cur.FrameIndex == prev.FrameIndex && cur.StepIndex <= prev.StepIndex) {
			t.Fatalf("manifest out of order at %d: %+v then %+v", i, prev, cur)
		}
	}
	if segments[0].FrameIndex != 0 || segments[0].StepIndex != 0 {
		t.Fatalf("first segment = %+v", segments[0])
	}
	if segments[3].FrameIndex != 1 || segments[3].StepIndex != 2 {
		t.Fatalf("last segment = %+v", segments[3])
	}
}

func TestExecuteRequiresStoryboard(t *testing.T) {
	a, job := newTestAnimator(t, &fakeAdapter{})
	job.StoryboardText = ""

	err := a.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestExecutePropagatesRenderFailure(t *testing.T) {
	renderErr := services.Wrap(services.ErrRender, "animating", "encode segment", "encoder rejected frame", errors.New("exit status 1"))
	a, job := newTestAnimator(t, &fakeAdapter{err: renderErr})

	err := a.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("err = %v, want ErrRender", err)
	}
	if status := services.FailureStatus(err); status != queue.StatusFailed {
		t.Fatalf("failure status = %v, want failed", status)
	}
}

func TestExecuteHonorsCancellation(t *testing.T) {
	a, job := newTestAnimator(t, &fakeAdapter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Execute(ctx, job)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	segments := []render.Segment{
		{FrameIndex: 0, StepIndex: 0, Path: filepath.Join(dir, "step_0000_0000.mp4"), Duration: 2 * time.Second},
		{FrameIndex: 1, StepIndex: 0, Path: filepath.Join(dir, "step_0001_0000.mp4"), Duration: 1500 * time.Millisecond},
	}
	if err := WriteManifest(dir, segments); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("segments = %d, want 2", len(got))
	}
	for i := range segments {
		if got[i] != segments[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, got[i], segments[i])
		}
	}
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if _, statErr := os.Stat(filepath.Join(t.TempDir(), ManifestName)); !os.IsNotExist(statErr) {
		t.Fatalf("unexpected manifest presence: %v", statErr)
	}
}
