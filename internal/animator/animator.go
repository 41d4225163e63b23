// Package animator implements the animating stage: storyboard in, ordered
// video segments out. It owns the per-job engine session (reveal sequencing,
// layout continuity) and fans the rasterization out over a bounded worker
// pool.
package animator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"storyreel/internal/config"
	"storyreel/internal/deps"
	"storyreel/internal/layout"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/render"
	"storyreel/internal/reveal"
	"storyreel/internal/scene"
	"storyreel/internal/services"
	"storyreel/internal/stage"
	"storyreel/internal/storyboard"
)

const defaultStepDuration = 2 * time.Second

// Animator renders storyboard reveal steps into per-step video segments.
type Animator struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	adapter render.Adapter
}

// New constructs the animating stage handler with the bundled rasterizer.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Animator, error) {
	theme := render.DefaultTheme()
	if path := cfg.Engine.ThemeFile; path != "" {
		loaded, err := render.LoadTheme(path)
		if err != nil {
			return nil, err
		}
		theme = loaded
	}
	rasterizer, err := render.NewRasterizer(render.Options{
		Width:  cfg.Video.Width,
		Height: cfg.Video.Height,
		FPS:    cfg.Video.FPS,
		FFmpeg: cfg.FFmpegBinary(),
		Theme:  theme,
	})
	if err != nil {
		return nil, err
	}
	return NewWithAdapter(cfg, store, logger, rasterizer), nil
}

// NewWithAdapter allows injecting the render backend (used in tests).
func NewWithAdapter(cfg *config.Config, store *queue.Store, logger *slog.Logger, adapter render.Adapter) *Animator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "animator"))
	}
	return &Animator{cfg: cfg, store: store, logger: stageLogger, adapter: adapter}
}

// SetLogger swaps the stage logger for per-job session capture.
func (a *Animator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		a.logger = logger.With(logging.String(logging.FieldComponent, "animator"))
	}
}

func (a *Animator) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, a.logger)
	job.InitProgress("Animating", "Preparing segment rendering")
	logger.Info("starting animation preparation", logging.String("title", job.Title))
	return nil
}

func (a *Animator) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, a.logger)

	board, err := stage.DecodeStoryboard(job.StoryboardText)
	if err != nil {
		return err
	}

	segmentsDir := filepath.Join(a.cfg.Paths.StagingDir, job.Token, "segments")
	if err := os.MkdirAll(segmentsDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "animating", "ensure segments dir", "failed to create segments directory", err)
	}

	requests := a.resolveSession(board, segmentsDir)
	workers := deps.RenderWorkers(a.cfg.Video.RenderWorkers)
	logger.Info("rendering segments",
		logging.Int("frames", len(board.Frames)),
		logging.Int("steps", len(requests)),
		logging.Int("workers", workers),
	)
	a.updateProgress(ctx, job, fmt.Sprintf("Rendering %d segments", len(requests)), 10)

	segments := make([]render.Segment, len(requests))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, req := range requests {
		i, req := i, req
		group.Go(func() error {
			segment, err := a.adapter.RenderStep(groupCtx, req)
			if err != nil {
				return err
			}
			segments[i] = segment
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	// Workers finish out of order; the manifest is the ordered record.
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].FrameIndex != segments[j].FrameIndex {
			return segments[i].FrameIndex < segments[j].FrameIndex
		}
		return segments[i].StepIndex < segments[j].StepIndex
	})
	if err := WriteManifest(segmentsDir, segments); err != nil {
		return err
	}

	job.SegmentsDir = segmentsDir
	job.SetProgressComplete("Animating", fmt.Sprintf("Rendered %d segments", len(segments)))
	logger.Info("animation completed",
		logging.Int("segments", len(segments)),
		logging.String("segments_dir", segmentsDir),
	)
	return nil
}

// HealthCheck verifies the encoder binary is installed.
func (a *Animator) HealthCheck(ctx context.Context) stage.Health {
	const name = "animator"
	if a.adapter == nil {
		return stage.Unhealthy(name, "render adapter unavailable")
	}
	ffmpeg := a.cfg.FFmpegBinary()
	if _, err := exec.LookPath(ffmpeg); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s not found in PATH", ffmpeg))
	}
	return stage.Healthy(name)
}

func (a *Animator) resolveSession(board *storyboard.Storyboard, segmentsDir string) []render.Request {
	geometry := layout.Geometry{
		BaseRadius: a.cfg.Engine.RingBase,
		RadiusStep: a.cfg.Engine.RingStep,
		RadiusCap:  a.cfg.Engine.RingCap,
	}
	stepDuration := time.Duration(a.cfg.Video.StepSeconds * float64(time.Second))
	return BuildRequests(board, geometry, a.cfg.Engine.Continuity, stepDuration, segmentsDir)
}

// BuildRequests walks the storyboard through the scene machine, producing
// render requests in timeline order. Resolution is sequential: the machine
// carries layout and continuity state across steps.
func BuildRequests(board *storyboard.Storyboard, geometry layout.Geometry, continuity bool, stepDuration time.Duration, outDir string) []render.Request {
	if stepDuration <= 0 {
		stepDuration = defaultStepDuration
	}
	machine := scene.NewMachine(geometry, continuity)

	var requests []render.Request
	for frameIndex, frame := range board.Frames {
		steps := reveal.Steps(frameIndex, frame, stepDuration)
		for stepIndex, step := range steps {
			resolved := machine.Resolve(stepIndex, step)
			requests = append(requests, render.Request{
				Frame:    resolved,
				Duration: step.Duration,
				OutDir:   outDir,
			})
		}
		machine.FinishFrame(frame.Nodes)
	}
	return requests
}

func (a *Animator) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, a.logger)
	copy := *job
	copy.SetProgress("Animating", message, percent)
	if err := a.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist animation progress", logging.Error(err))
		return
	}
	*job = copy
}
