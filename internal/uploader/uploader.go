// Package uploader implements the uploading stage: assembled videos get
// published to the configured YouTube channel.
package uploader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/services/youtube"
	"storyreel/internal/stage"
)

// Publisher pushes a finished video and returns its watch URL.
type Publisher interface {
	Upload(ctx context.Context, videoPath, title, description string) (string, error)
}

// Uploader publishes assembled videos. The YouTube client is built lazily on
// first use because credential loading needs a context.
type Uploader struct {
	cfg       *config.Config
	store     *queue.Store
	logger    *slog.Logger
	publisher Publisher
	connect   func(ctx context.Context) (Publisher, error)
}

// New constructs the uploading stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Uploader {
	u := newUploader(cfg, store, logger)
	u.connect = func(ctx context.Context) (Publisher, error) {
		return youtube.NewClient(ctx, youtube.Config{
			ClientSecretsPath: cfg.YouTube.ClientSecretsFile,
			TokenPath:         cfg.YouTube.TokenFile,
			Privacy:           cfg.YouTube.PrivacyStatus,
			CategoryID:        cfg.YouTube.CategoryID,
			Tags:              cfg.YouTube.Tags,
		})
	}
	return u
}

// NewWithPublisher allows injecting the publishing backend (used in tests).
func NewWithPublisher(cfg *config.Config, store *queue.Store, logger *slog.Logger, publisher Publisher) *Uploader {
	u := newUploader(cfg, store, logger)
	u.publisher = publisher
	return u
}

func newUploader(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Uploader {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "uploader"))
	}
	return &Uploader{cfg: cfg, store: store, logger: stageLogger}
}

// SetLogger swaps the stage logger for per-job session capture.
func (u *Uploader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		u.logger = logger.With(logging.String(logging.FieldComponent, "uploader"))
	}
}

func (u *Uploader) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, u.logger)
	job.InitProgress("Uploading", "Preparing video upload")
	logger.Info("starting upload preparation", logging.String("title", job.Title))
	return nil
}

func (u *Uploader) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, u.logger)

	if job.VideoPath == "" {
		return services.Wrap(services.ErrValidation, "uploading", "verify video", "job has no assembled video", nil)
	}
	if _, err := os.Stat(job.VideoPath); err != nil {
		return services.Wrap(services.ErrNotFound, "uploading", "verify video",
			fmt.Sprintf("assembled video %s is not readable", job.VideoPath), err)
	}

	publisher := u.publisher
	if publisher == nil {
		built, err := u.connect(ctx)
		if err != nil {
			return err
		}
		publisher = built
		u.publisher = built
	}

	title := DisplayTitle(job.Title)
	description := buildDescription(job)
	u.updateProgress(ctx, job, fmt.Sprintf("Uploading %q", title), 20)

	url, err := publisher.Upload(ctx, job.VideoPath, title, description)
	if err != nil {
		return err
	}

	job.MediaURL = url
	job.SetProgressComplete("Uploading", fmt.Sprintf("Published %s", url))
	logger.Info("upload completed",
		logging.String("title", title),
		logging.String("url", url),
	)
	return nil
}

// HealthCheck verifies the credential files are readable. Token validity is
// only known at upload time.
func (u *Uploader) HealthCheck(ctx context.Context) stage.Health {
	const name = "uploader"
	if u.publisher != nil {
		return stage.Healthy(name)
	}
	for _, path := range []string{u.cfg.YouTube.ClientSecretsFile, u.cfg.YouTube.TokenFile} {
		if strings.TrimSpace(path) == "" {
			return stage.Unhealthy(name, "youtube credentials not configured")
		}
		if _, err := os.Stat(path); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("credential file %s unreadable", path))
		}
	}
	return stage.Healthy(name)
}

// DisplayTitle renders the stored title in title case for publication.
func DisplayTitle(title string) string {
	return cases.Title(language.English).String(strings.TrimSpace(title))
}

// buildDescription appends the generated section list to the summary so the
// video page mirrors the storyboard structure.
func buildDescription(job *queue.Job) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(job.Description))
	subs := job.Subheadings()
	if len(subs) > 0 {
		b.WriteString("\n\nSections:\n")
		for _, sub := range subs {
			b.WriteString("- ")
			b.WriteString(sub.Heading)
			if sub.Text != "" {
				b.WriteString(": ")
				b.WriteString(sub.Text)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func (u *Uploader) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, u.logger)
	copy := *job
	copy.SetProgress("Uploading", message, percent)
	if err := u.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist upload progress", logging.Error(err))
		return
	}
	*job = copy
}
