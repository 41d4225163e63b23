package uploader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
)

type fakePublisher struct {
	url string
	err error

	videoPath   string
	title       string
	description string
}

func (f *fakePublisher) Upload(_ context.Context, videoPath, title, description string) (string, error) {
	f.videoPath = videoPath
	f.title = title
	f.description = description
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newTestUploader(t *testing.T, publisher Publisher) (*Uploader, *queue.Job) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Queue.DBPath = filepath.Join(base, "queue.db")
	cfg.YouTube.Enabled = true

	store, err := queue.OpenPath(cfg.Queue.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job, err := store.NewJob(context.Background(), "explain graph theory", "")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.Description = "A short walk through graph basics."
	job.SetSubheadings([]queue.Subheading{
		{Heading: "Graph terminology", Text: "Covers nodes and edges."},
		{Heading: "Directed connections", Text: ""},
	})

	videoPath := filepath.Join(base, "explain graph theory.mp4")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	job.VideoPath = videoPath

	return NewWithPublisher(&cfg, store, logging.NewNop(), publisher), job
}

func TestExecutePublishesAndRecordsURL(t *testing.T) {
	publisher := &fakePublisher{url: "https://www.youtube.com/watch?v=abc123"}
	u, job := newTestUploader(t, publisher)

	if err := u.Prepare(context.Background(), job); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := u.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if job.MediaURL != publisher.url {
		t.Fatalf("media url = %q", job.MediaURL)
	}
	if publisher.videoPath != job.VideoPath {
		t.Fatalf("uploaded path = %q", publisher.videoPath)
	}
	if publisher.title != "Explain Graph Theory" {
		t.Fatalf("title = %q", publisher.title)
	}
	if !strings.Contains(publisher.description, "A short walk through graph basics.") {
		t.Fatalf("description = %q", publisher.description)
	}
	if !strings.Contains(publisher.description, "- Graph terminology: Covers nodes and edges.") {
		t.Fatalf("description missing sections: %q", publisher.description)
	}
	if job.ProgressPercent != 100 {
		t.Fatalf("progress = %v", job.ProgressPercent)
	}
}

func TestExecuteRequiresAssembledVideo(t *testing.T) {
	u, job := newTestUploader(t, &fakePublisher{})
	job.VideoPath = ""

	err := u.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestExecuteFlagsMissingVideoFile(t *testing.T) {
	u, job := newTestUploader(t, &fakePublisher{})
	job.VideoPath = filepath.Join(t.TempDir(), "gone.mp4")

	err := u.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if status := services.FailureStatus(err); status != queue.StatusReview {
		t.Fatalf("failure status = %v, want review", status)
	}
}

func TestExecutePropagatesUploadFailure(t *testing.T) {
	uploadErr := services.Wrap(services.ErrTransient, "upload", "insert video", "http 503", errors.New("backend error"))
	u, job := newTestUploader(t, &fakePublisher{err: uploadErr})

	err := u.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
	if job.MediaURL != "" {
		t.Fatalf("media url should stay empty, got %q", job.MediaURL)
	}
}

func TestHealthCheckRequiresCredentialFiles(t *testing.T) {
	cfg := config.Default()
	cfg.YouTube.Enabled = true
	cfg.YouTube.ClientSecretsFile = filepath.Join(t.TempDir(), "client_secrets.json")
	cfg.YouTube.TokenFile = filepath.Join(t.TempDir(), "token.json")

	u := New(&cfg, nil, logging.NewNop())
	if health := u.HealthCheck(context.Background()); health.Ready {
		t.Fatal("missing credentials should be unhealthy")
	}

	for _, path := range []string{cfg.YouTube.ClientSecretsFile, cfg.YouTube.TokenFile} {
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatalf("write credential: %v", err)
		}
	}
	if health := u.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("health = %+v, want ready", health)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle("  explain graph theory "); got != "Explain Graph Theory" {
		t.Fatalf("title = %q", got)
	}
}
