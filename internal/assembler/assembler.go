// Package assembler implements the assembling stage: rendered segments plus
// narration and a music bed become the final library video.
package assembler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"log/slog"

	"storyreel/internal/animator"
	"storyreel/internal/config"
	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/narrator"
	"storyreel/internal/queue"
	"storyreel/internal/render"
	"storyreel/internal/services"
	"storyreel/internal/services/music"
	"storyreel/internal/stage"
	"storyreel/internal/textutil"
	"storyreel/internal/timeline"
)

// Assembler composes the per-job artifacts into the final video and moves it
// into the library.
type Assembler struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	timeline *timeline.Assembler
	music    *music.Service
}

// New constructs the assembling stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Assembler {
	return NewWithDependencies(cfg, store, logger,
		timeline.NewAssembler(cfg.FFmpegBinary(), cfg.FFprobeBinary()),
		music.NewService(cfg.Paths.MusicDir, cfg.Video.MusicTrack),
	)
}

// NewWithDependencies allows injecting the composer and music selector (used
// in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, composer *timeline.Assembler, picker *music.Service) *Assembler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "assembler"))
	}
	return &Assembler{cfg: cfg, store: store, logger: stageLogger, timeline: composer, music: picker}
}

// SetLogger swaps the stage logger for per-job session capture.
func (s *Assembler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String(logging.FieldComponent, "assembler"))
	}
}

func (s *Assembler) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	job.InitProgress("Assembling", "Preparing timeline assembly")
	logger.Info("starting assembly preparation", logging.String("title", job.Title))
	return nil
}

func (s *Assembler) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	board, err := stage.DecodeStoryboard(job.StoryboardText)
	if err != nil {
		return err
	}

	plan, err := s.buildPlan(job, len(board.Frames))
	if err != nil {
		return err
	}
	s.updateProgress(ctx, job, fmt.Sprintf("Composing %d frames", len(plan.Frames)), 10)

	composed, err := s.timeline.Compose(ctx, plan)
	if err != nil {
		return err
	}
	s.updateProgress(ctx, job, "Publishing to library", 90)

	finalPath, err := s.publish(job, composed)
	if err != nil {
		return err
	}

	job.VideoPath = finalPath
	job.SetProgressComplete("Assembling", fmt.Sprintf("Assembled %s", filepath.Base(finalPath)))
	logger.Info("assembly completed",
		logging.Int("frames", len(plan.Frames)),
		logging.String("video_path", finalPath),
		logging.String("music", plan.MusicPath),
	)
	return nil
}

// HealthCheck verifies both media binaries are installed.
func (s *Assembler) HealthCheck(ctx context.Context) stage.Health {
	const name = "assembler"
	for _, binary := range []string{s.cfg.FFmpegBinary(), s.cfg.FFprobeBinary()} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("%s not found in PATH", binary))
		}
	}
	return stage.Healthy(name)
}

// buildPlan resolves the animator's segment manifest and the narrator's
// artifacts into a timeline plan. Both stages share the artifact naming
// rules, so resolution is purely positional.
func (s *Assembler) buildPlan(job *queue.Job, frameCount int) (timeline.Plan, error) {
	if job.SegmentsDir == "" {
		return timeline.Plan{}, services.Wrap(services.ErrValidation, "assembling", "build plan", "job has no segments directory", nil)
	}
	if job.NarrationDir == "" {
		return timeline.Plan{}, services.Wrap(services.ErrValidation, "assembling", "build plan", "job has no narration directory", nil)
	}

	segments, err := animator.ReadManifest(job.SegmentsDir)
	if err != nil {
		return timeline.Plan{}, err
	}

	byFrame := make(map[int][]render.Segment)
	for _, segment := range segments {
		byFrame[segment.FrameIndex] = append(byFrame[segment.FrameIndex], segment)
	}
	if len(byFrame) != frameCount {
		return timeline.Plan{}, services.Wrap(services.ErrValidation, "assembling", "build plan",
			fmt.Sprintf("manifest covers %d frames, storyboard has %d", len(byFrame), frameCount), nil)
	}

	frames := make([]timeline.FramePlan, 0, frameCount)
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameSegments, ok := byFrame[frameIndex]
		if !ok {
			return timeline.Plan{}, services.Wrap(services.ErrValidation, "assembling", "build plan",
				fmt.Sprintf("manifest is missing frame %d", frameIndex), nil)
		}
		narration := filepath.Join(job.NarrationDir, narrator.NarrationFileName(frameIndex, s.cfg.TTS.Format))
		if _, err := os.Stat(narration); err != nil {
			return timeline.Plan{}, services.Wrap(services.ErrValidation, "assembling", "build plan",
				fmt.Sprintf("narration for frame %d missing", frameIndex), err)
		}
		frames = append(frames, timeline.FramePlan{
			FrameIndex:    frameIndex,
			Segments:      frameSegments,
			NarrationPath: narration,
		})
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].FrameIndex < frames[j].FrameIndex })

	musicPath, err := s.music.Pick("")
	if err != nil {
		return timeline.Plan{}, services.Wrap(services.ErrConfiguration, "assembling", "pick music", "music selection failed", err)
	}

	workDir := filepath.Join(s.cfg.Paths.StagingDir, job.Token, "assembly")
	return timeline.Plan{
		Frames:      frames,
		MusicPath:   musicPath,
		MusicVolume: s.cfg.Video.MusicVolume,
		WorkDir:     workDir,
		OutputPath:  filepath.Join(workDir, "final.mp4"),
	}, nil
}

// publish moves the composed video into the library under a title-derived
// name. A second run for the same title falls back to a token-suffixed name
// instead of overwriting.
func (s *Assembler) publish(job *queue.Job, composed string) (string, error) {
	if err := os.MkdirAll(s.cfg.Paths.LibraryDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "assembling", "publish", "failed to create library directory", err)
	}

	base := textutil.SanitizeFileName(job.Title)
	if base == "" {
		base = job.Token
	}
	finalPath := filepath.Join(s.cfg.Paths.LibraryDir, base+".mp4")
	if _, err := os.Stat(finalPath); err == nil {
		finalPath = filepath.Join(s.cfg.Paths.LibraryDir, fmt.Sprintf("%s_%s.mp4", base, job.Token))
	}

	if err := fileutil.MoveFile(composed, finalPath); err != nil {
		return "", services.Wrap(services.ErrRender, "assembling", "publish", "failed to move video into library", err)
	}
	return finalPath, nil
}

func (s *Assembler) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, s.logger)
	copy := *job
	copy.SetProgress("Assembling", message, percent)
	if err := s.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist assembly progress", logging.Error(err))
		return
	}
	*job = copy
}
