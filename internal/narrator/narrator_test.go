package narrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/services/tts"
)

const wireSample = "intro?Welcome to graph basics?NO_NODE?NO_NODE$graph?Two nodes connect?circle:blue:a,box:green:b?0:1"

func newTestNarrator(t *testing.T) (*Narrator, *queue.Job, *tts.Service) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Queue.DBPath = filepath.Join(base, "queue.db")

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

	service := tts.NewService(tts.Config{Binary: "edge-tts", Voice: "en-US-GuyNeural"})
	n := NewWithService(&cfg, store, logging.NewNop(), service)
	n.WithDurationProber(func(context.Context, string) (time.Duration, error) {
		return 3 * time.Second, nil
	})
	return n, job, service
}

// fakeSynthesis writes a small file the way the real tool would.
func fakeSynthesis(t *testing.T) func(ctx context.Context, name string, args ...string) error {
	t.Helper()
	return func(_ context.Context, _ string, args ...string) error {
		var dest string
		for i, arg := range args {
			if arg == "--write-media" && i+1 < len(args) {
				dest = args[i+1]
			}
		}
		if dest == "" {
			t.Fatal("synthesis invoked without --write-media")
		}
		return os.WriteFile(dest, []byte("audio"), 0o644)
	}
}

func TestExecuteSynthesizesEachFrame(t *testing.T) {
	n, job, service := newTestNarrator(t)

	var calls int
	inner := fakeSynthesis(t)
	service.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		calls++
		return inner(ctx, name, args...)
	})

	if err := n.Prepare(context.Background(), job); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := n.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if calls != 2 {
		t.Fatalf("synthesis calls = %d, want 2", calls)
	}
	if job.NarrationDir == "" {
		t.Fatal("narration dir not recorded")
	}
	for i := 0; i < 2; i++ {
		path := filepath.Join(job.NarrationDir, NarrationFileName(i, "mp3"))
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("artifact %d missing: %v", i, err)
		}
	}
	if job.ProgressPercent != 100 {
		t.Fatalf("progress = %v", job.ProgressPercent)
	}
	if !strings.Contains(job.ProgressMessage, "2 frames") {
		t.Fatalf("progress message = %q", job.ProgressMessage)
	}
}

func TestExecuteRequiresStoryboard(t *testing.T) {
	n, job, _ := newTestNarrator(t)
	job.StoryboardText = ""

	err := n.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestExecuteWrapsSynthesisFailure(t *testing.T) {
	n, job, service := newTestNarrator(t)
	service.WithSleeper(func(time.Duration) {})
	service.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("edge-tts: exit status 1")
	})

	err := n.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", err)
	}
}

func TestExecuteFlagsEmptyArtifacts(t *testing.T) {
	n, job, service := newTestNarrator(t)
	service.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		for i, arg := range args {
			if arg == "--write-media" && i+1 < len(args) {
				return os.WriteFile(args[i+1], nil, 0o644)
			}
		}
		return nil
	})

	err := n.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrAudioSync) {
		t.Fatalf("err = %v, want ErrAudioSync", err)
	}
}

func TestExecuteWrapsProbeFailure(t *testing.T) {
	n, job, service := newTestNarrator(t)
	service.WithCommandRunner(fakeSynthesis(t))
	n.WithDurationProber(func(context.Context, string) (time.Duration, error) {
		return 0, errors.New("ffprobe: invalid data")
	})

	err := n.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrAudioSync) {
		t.Fatalf("err = %v, want ErrAudioSync", err)
	}
}

func TestNarrationFileName(t *testing.T) {
	if got := NarrationFileName(0, "mp3"); got != "frame_000.mp3" {
		t.Fatalf("name = %q", got)
	}
	if got := NarrationFileName(12, ".wav"); got != "frame_012.wav" {
		t.Fatalf("name = %q", got)
	}
	if got := NarrationFileName(3, ""); got != "frame_003.mp3" {
		t.Fatalf("name = %q", got)
	}
}

func TestHealthCheckReportsMissingBinary(t *testing.T) {
	cfg := config.Default()
	service := tts.NewService(tts.Config{Binary: "definitely-not-installed-tts"})
	n := NewWithService(&cfg, nil, logging.NewNop(), service)

	health := n.HealthCheck(context.Background())
	if health.Ready {
		t.Fatal("missing binary should be unhealthy")
	}
	if !strings.Contains(health.Detail, "definitely-not-installed-tts") {
		t.Fatalf("detail = %q", health.Detail)
	}
}
