// Package narrator implements the narrating stage: one synthesized speech
// artifact per storyboard frame.
package narrator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/probe"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/services/tts"
	"storyreel/internal/stage"
)

// Narrator synthesizes per-frame narration audio into the job's staging
// area.
type Narrator struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	tts    *tts.Service
	probe  func(ctx context.Context, path string) (time.Duration, error)
}

// New constructs the narrating stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Narrator {
	service := tts.NewService(tts.Config{
		Binary: cfg.TTS.Binary,
		Voice:  cfg.TTS.Voice,
		Rate:   cfg.TTS.Rate,
		Format: cfg.TTS.Format,
	})
	n := NewWithService(cfg, store, logger, service)
	n.probe = func(ctx context.Context, path string) (time.Duration, error) {
		result, err := probe.Inspect(ctx, cfg.FFprobeBinary(), path)
		if err != nil {
			return 0, err
		}
		return result.Duration(), nil
	}
	return n
}

// NewWithService allows injecting the TTS service (used in tests).
func NewWithService(cfg *config.Config, store *queue.Store, logger *slog.Logger, service *tts.Service) *Narrator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "narrator"))
	}
	return &Narrator{cfg: cfg, store: store, logger: stageLogger, tts: service}
}

// SetLogger swaps the stage logger for per-job session capture.
func (n *Narrator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		n.logger = logger.With(logging.String(logging.FieldComponent, "narrator"))
	}
}

// WithDurationProber overrides the artifact duration probe (used in tests).
func (n *Narrator) WithDurationProber(probe func(ctx context.Context, path string) (time.Duration, error)) {
	n.probe = probe
}

func (n *Narrator) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, n.logger)
	job.InitProgress("Narrating", "Preparing narration synthesis")
	logger.Info("starting narration preparation", logging.String("title", job.Title))
	return nil
}

func (n *Narrator) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, n.logger)

	board, err := stage.DecodeStoryboard(job.StoryboardText)
	if err != nil {
		return err
	}

	narrationDir := filepath.Join(n.cfg.Paths.StagingDir, job.Token, "narration")
	if err := os.MkdirAll(narrationDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "narrating", "ensure narration dir", "failed to create narration directory", err)
	}

	total := len(board.Frames)
	var voiced time.Duration
	for i, frame := range board.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest := filepath.Join(narrationDir, NarrationFileName(i, n.cfg.TTS.Format))
		n.updateProgress(ctx, job, fmt.Sprintf("Synthesizing narration %d/%d", i+1, total), float64(i)/float64(total)*90)

		if err := n.tts.Synthesize(ctx, frame.Text, dest); err != nil {
			return services.Wrap(services.ErrExternalTool, "narrating", "synthesize narration",
				fmt.Sprintf("speech synthesis failed for frame %d", i), err)
		}
		duration, err := n.probeArtifact(ctx, dest)
		if err != nil {
			return err
		}
		voiced += duration
		logger.Debug("narration artifact ready",
			logging.Int("frame", i),
			logging.String("path", dest),
			logging.Duration("duration", duration),
		)
	}

	job.NarrationDir = narrationDir
	job.SetProgressComplete("Narrating", fmt.Sprintf("Narrated %d frames (%s of speech)", total, voiced.Round(time.Second)))
	logger.Info("narration completed",
		logging.Int("frames", total),
		logging.Duration("voiced", voiced),
		logging.String("narration_dir", narrationDir),
	)
	return nil
}

// HealthCheck verifies the TTS tool is installed.
func (n *Narrator) HealthCheck(ctx context.Context) stage.Health {
	const name = "narrator"
	if n.tts == nil {
		return stage.Unhealthy(name, "tts service unavailable")
	}
	binary := n.tts.Binary()
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s not found in PATH", binary))
	}
	return stage.Healthy(name)
}

func (n *Narrator) probeArtifact(ctx context.Context, path string) (time.Duration, error) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return 0, services.Wrap(services.ErrAudioSync, "narrating", "verify narration",
			fmt.Sprintf("narration artifact %s missing or empty", filepath.Base(path)), err)
	}
	if n.probe == nil {
		return 0, nil
	}
	duration, err := n.probe(ctx, path)
	if err != nil {
		return 0, services.Wrap(services.ErrAudioSync, "narrating", "probe narration",
			fmt.Sprintf("duration probe failed for %s", filepath.Base(path)), err)
	}
	return duration, nil
}

func (n *Narrator) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, n.logger)
	copy := *job
	copy.SetProgress("Narrating", message, percent)
	if err := n.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist narration progress", logging.Error(err))
		return
	}
	*job = copy
}

// NarrationFileName is the canonical artifact name for a frame's narration.
// The assembler resolves artifacts by the same rule.
func NarrationFileName(frameIndex int, format string) string {
	ext := strings.TrimPrefix(strings.TrimSpace(format), ".")
	if ext == "" {
		ext = "mp3"
	}
	return fmt.Sprintf("frame_%03d.%s", frameIndex, ext)
}
