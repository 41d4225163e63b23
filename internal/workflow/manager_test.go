package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/stage"
)

type fakeHandler struct {
	name      string
	onExecute func(*queue.Job) error
	prepared  int
	executed  int
}

func (f *fakeHandler) Prepare(_ context.Context, _ *queue.Job) error {
	f.prepared++
	return nil
}

func (f *fakeHandler) Execute(_ context.Context, job *queue.Job) error {
	f.executed++
	if f.onExecute != nil {
		return f.onExecute(job)
	}
	return nil
}

func (f *fakeHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(f.name)
}

type recordingNotifier struct {
	mu            sync.Mutex
	scriptReady   int
	renderDone    int
	uploadDone    int
	failed        int
	review        int
	drained       int
	lastWatchURL  string
	lastFrameHint int
}

func (r *recordingNotifier) NotifyJobQueued(context.Context, string) error { return nil }

func (r *recordingNotifier) NotifyScriptReady(_ context.Context, _ string, frames int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scriptReady++
	r.lastFrameHint = frames
	return nil
}

func (r *recordingNotifier) NotifyRenderCompleted(context.Context, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderDone++
	return nil
}

func (r *recordingNotifier) NotifyUploadCompleted(_ context.Context, _ string, watchURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploadDone++
	r.lastWatchURL = watchURL
	return nil
}

func (r *recordingNotifier) NotifyJobFailed(context.Context, string, error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
	return nil
}

func (r *recordingNotifier) NotifyJobReview(context.Context, string, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.review++
	return nil
}

func (r *recordingNotifier) NotifyQueueDrained(context.Context, int, int, time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drained++
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func newTestManager(t *testing.T, notifier *recordingNotifier) (*Manager, *queue.Store) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.LLM.APIKey = "test-key"
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Queue.DBPath = filepath.Join(base, "queue.db")
	cfg.Queue.PollIntervalSeconds = 1

	store, err := queue.OpenPath(cfg.Queue.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewManagerWithNotifier(&cfg, store, logging.NewNop(), notifier), store
}

func drive(t *testing.T, m *Manager, store *queue.Store, jobID int64, maxSteps int) *queue.Job {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewNop()
	for i := 0; i < maxSteps; i++ {
		job, err := store.GetByID(ctx, jobID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if job.Status.IsTerminal() {
			return job
		}
		_ = m.processJob(ctx, logger, job)
	}
	job, err := store.GetByID(ctx, jobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	return job
}

func TestManagerRunsPipelineToCompletion(t *testing.T) {
	notifier := &recordingNotifier{}
	m, store := newTestManager(t, notifier)

	scripter := &fakeHandler{name: "scripter", onExecute: func(job *queue.Job) error {
		job.StoryboardText = "Intro?welcome?NO_NODE?NO_NODE$Graph?two nodes?circle:blue:a,box:green:b?0:1"
		return nil
	}}
	narrator := &fakeHandler{name: "narrator", onExecute: func(job *queue.Job) error {
		job.NarrationDir = "/tmp/narration"
		return nil
	}}
	animator := &fakeHandler{name: "animator", onExecute: func(job *queue.Job) error {
		job.SegmentsDir = "/tmp/segments"
		return nil
	}}
	assembler := &fakeHandler{name: "assembler", onExecute: func(job *queue.Job) error {
		job.VideoPath = "/tmp/final.mp4"
		return nil
	}}
	uploader := &fakeHandler{name: "uploader", onExecute: func(job *queue.Job) error {
		job.MediaURL = "https://www.youtube.com/watch?v=test"
		return nil
	}}
	m.ConfigureStages(StageSet{
		Scripter:  scripter,
		Narrator:  narrator,
		Animator:  animator,
		Assembler: assembler,
		Uploader:  uploader,
	})

	job, err := store.NewJob(context.Background(), "explain ring buffers", "")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	final := drive(t, m, store, job.ID, 10)
	if final.Status != queue.StatusCompleted {
		t.Fatalf("status = %s (error %q)", final.Status, final.ErrorMessage)
	}
	if final.VideoPath != "/tmp/final.mp4" || final.MediaURL == "" {
		t.Fatalf("artifacts not persisted: %+v", final)
	}
	for _, h := range []*fakeHandler{scripter, narrator, animator, assembler, uploader} {
		if h.prepared != 1 || h.executed != 1 {
			t.Fatalf("handler %s ran prepare=%d execute=%d", h.name, h.prepared, h.executed)
		}
	}
	if notifier.scriptReady != 1 || notifier.lastFrameHint != 2 {
		t.Fatalf("script notification = %d frames %d", notifier.scriptReady, notifier.lastFrameHint)
	}
	if notifier.uploadDone != 1 || notifier.lastWatchURL != "https://www.youtube.com/watch?v=test" {
		t.Fatalf("upload notification = %d url %q", notifier.uploadDone, notifier.lastWatchURL)
	}
	if notifier.drained == 0 {
		t.Fatal("queue drained notification missing")
	}
}

func TestManagerWithoutUploaderFinishesAtAssembly(t *testing.T) {
	notifier := &recordingNotifier{}
	m, store := newTestManager(t, notifier)
	m.ConfigureStages(StageSet{
		Scripter:  &fakeHandler{name: "scripter"},
		Narrator:  &fakeHandler{name: "narrator"},
		Animator:  &fakeHandler{name: "animator"},
		Assembler: &fakeHandler{name: "assembler"},
	})

	job, err := store.NewJob(context.Background(), "explain queues", "")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	final := drive(t, m, store, job.ID, 10)
	if final.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", final.Status)
	}
	if notifier.renderDone != 1 {
		t.Fatalf("render notification = %d", notifier.renderDone)
	}
	if notifier.uploadDone != 0 {
		t.Fatal("upload notification should not fire without uploader")
	}
}

func TestManagerRoutesValidationFailuresToReview(t *testing.T) {
	notifier := &recordingNotifier{}
	m, store := newTestManager(t, notifier)
	m.ConfigureStages(StageSet{
		Scripter: &fakeHandler{name: "scripter", onExecute: func(*queue.Job) error {
			return services.Wrap(services.ErrValidation, "scripter", "decode storyboard", "model produced malformed encoding", nil)
		}},
	})

	job, err := store.NewJob(context.Background(), "explain hash maps", "")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	final := drive(t, m, store, job.ID, 3)
	if final.Status != queue.StatusReview {
		t.Fatalf("status = %s", final.Status)
	}
	if !final.NeedsReview || final.ReviewReason == "" {
		t.Fatalf("review fields not set: %+v", final)
	}
	if notifier.review != 1 || notifier.failed != 0 {
		t.Fatalf("notifications review=%d failed=%d", notifier.review, notifier.failed)
	}
}

func TestManagerFailsOnUnclassifiedError(t *testing.T) {
	notifier := &recordingNotifier{}
	m, store := newTestManager(t, notifier)
	m.ConfigureStages(StageSet{
		Scripter: &fakeHandler{name: "scripter", onExecute: func(*queue.Job) error {
			return errors.New("llm unreachable")
		}},
	})

	job, err := store.NewJob(context.Background(), "explain b-trees", "")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	final := drive(t, m, store, job.ID, 3)
	if final.Status != queue.StatusFailed {
		t.Fatalf("status = %s", final.Status)
	}
	if final.ErrorMessage == "" {
		t.Fatal("error message should persist")
	}
	if notifier.failed != 1 {
		t.Fatalf("failed notifications = %d", notifier.failed)
	}
}

func TestStartRequiresConfiguredStages(t *testing.T) {
	m, _ := newTestManager(t, &recordingNotifier{})
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("start without stages should fail")
	}
}

func TestStartAndStop(t *testing.T) {
	m, store := newTestManager(t, &recordingNotifier{})
	m.ConfigureStages(StageSet{Scripter: &fakeHandler{name: "scripter", onExecute: func(job *queue.Job) error {
		job.Status = queue.StatusCompleted
		return nil
	}}})

	job, err := store.NewJob(context.Background(), "explain tries", "")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		current, err := store.GetByID(context.Background(), job.ID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if current.Status == queue.StatusCompleted {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	m.Stop()

	final, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if final.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", final.Status)
	}
}
