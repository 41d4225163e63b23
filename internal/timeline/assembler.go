package timeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"storyreel/internal/probe"
	"storyreel/internal/render"
	"storyreel/internal/services"
)

// FramePlan is one storyboard frame's contribution to the timeline: the
// ordered visual segments plus the narration clip recorded for the frame.
type FramePlan struct {
	FrameIndex    int
	Segments      []render.Segment
	NarrationPath string
}

// Plan is the full assembly input for a job.
type Plan struct {
	Frames      []FramePlan
	MusicPath   string
	MusicVolume float64
	WorkDir     string
	OutputPath  string
}

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// DurationProber measures a media file's container duration.
type DurationProber func(ctx context.Context, path string) (time.Duration, error)

// Assembler composes frame segments, narration, and music into the final
// video.
type Assembler struct {
	ffmpeg  string
	ffprobe string
	run     CommandRunner
	probeFn DurationProber
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithRunner replaces the ffmpeg invocation (used in tests).
func WithRunner(run CommandRunner) Option {
	return func(a *Assembler) {
		if run != nil {
			a.run = run
		}
	}
}

// WithDurationProber replaces the ffprobe duration lookup (used in tests).
func WithDurationProber(probeFn DurationProber) Option {
	return func(a *Assembler) {
		if probeFn != nil {
			a.probeFn = probeFn
		}
	}
}

// NewAssembler builds an Assembler using the given ffmpeg and ffprobe
// binaries. Empty names fall back to PATH lookup.
func NewAssembler(ffmpeg, ffprobe string, opts ...Option) *Assembler {
	a := &Assembler{
		ffmpeg:  strings.TrimSpace(ffmpeg),
		ffprobe: strings.TrimSpace(ffprobe),
	}
	if a.ffmpeg == "" {
		a.ffmpeg = "ffmpeg"
	}
	if a.ffprobe == "" {
		a.ffprobe = "ffprobe"
	}
	a.run = a.runCommand
	a.probeFn = a.probeDuration
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compose assembles the plan into plan.OutputPath and returns the final path.
func (a *Assembler) Compose(ctx context.Context, plan Plan) (string, error) {
	if len(plan.Frames) == 0 {
		return "", services.Wrap(services.ErrValidation, "assemble", "compose", "no frames in plan", nil)
	}
	if plan.OutputPath == "" {
		return "", services.Wrap(services.ErrValidation, "assemble", "compose", "no output path", nil)
	}
	workDir := plan.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(plan.OutputPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrRender, "assemble", "compose", "create work dir", err)
	}

	frames := append([]FramePlan(nil), plan.Frames...)
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].FrameIndex < frames[j].FrameIndex })

	clips := make([]string, 0, len(frames))
	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		clip, err := a.composeFrame(ctx, workDir, frame)
		if err != nil {
			return "", err
		}
		clips = append(clips, clip)
	}

	combined := filepath.Join(workDir, "combined.mp4")
	if err := a.concat(ctx, clips, combined, false); err != nil {
		return "", err
	}

	if plan.MusicPath != "" {
		if err := a.mixMusic(ctx, combined, plan.MusicPath, plan.MusicVolume, plan.OutputPath); err != nil {
			return "", err
		}
	} else {
		if err := a.finalize(ctx, combined, plan.OutputPath); err != nil {
			return "", err
		}
	}
	return plan.OutputPath, nil
}

// composeFrame concatenates the frame's segments, extends the visuals to the
// narration length when the narration runs longer, and muxes the audio.
func (a *Assembler) composeFrame(ctx context.Context, workDir string, frame FramePlan) (string, error) {
	if len(frame.Segments) == 0 {
		return "", services.Wrap(services.ErrValidation, "assemble", "compose frame",
			fmt.Sprintf("frame %d has no segments", frame.FrameIndex), nil)
	}
	segments := append([]render.Segment(nil), frame.Segments...)
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].StepIndex < segments[j].StepIndex })

	visual := filepath.Join(workDir, fmt.Sprintf("frame_%04d_visual.mp4", frame.FrameIndex))
	paths := make([]string, len(segments))
	for i, segment := range segments {
		paths[i] = segment.Path
	}
	if err := a.concat(ctx, paths, visual, true); err != nil {
		return "", err
	}

	if frame.NarrationPath == "" {
		return visual, nil
	}

	visualDur, err := a.probeFn(ctx, visual)
	if err != nil {
		return "", services.Wrap(services.ErrAudioSync, "assemble", "probe visuals", visual, err)
	}
	narrationDur, err := a.probeFn(ctx, frame.NarrationPath)
	if err != nil {
		return "", services.Wrap(services.ErrAudioSync, "assemble", "probe narration", frame.NarrationPath, err)
	}

	source := visual
	if narrationDur > visualDur {
		// Freeze the last frame so the narration never gets cut off.
		extended := filepath.Join(workDir, fmt.Sprintf("frame_%04d_extended.mp4", frame.FrameIndex))
		pad := fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%.3f", (narrationDur - visualDur).Seconds())
		args := []string{
			"-y", "-i", visual,
			"-vf", pad,
			"-an",
			"-c:v", "libx264", "-pix_fmt", "yuv420p", "-preset", "medium", "-crf", "23",
			extended,
		}
		if out, err := a.run(ctx, a.ffmpeg, args...); err != nil {
			return "", services.Wrap(services.ErrRender, "assemble", "extend visuals", strings.TrimSpace(string(out)), err)
		}
		source = extended
	}

	muxed := filepath.Join(workDir, fmt.Sprintf("frame_%04d.mp4", frame.FrameIndex))
	args := []string{
		"-y",
		"-i", source,
		"-i", frame.NarrationPath,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "copy", "-c:a", "aac",
		muxed,
	}
	if out, err := a.run(ctx, a.ffmpeg, args...); err != nil {
		return "", services.Wrap(services.ErrAudioSync, "assemble", "mux narration", strings.TrimSpace(string(out)), err)
	}
	return muxed, nil
}

// concat joins clips with the concat demuxer. Stream copy keeps segment
// encodes intact; reencode is used when inputs may disagree on audio layout.
func (a *Assembler) concat(ctx context.Context, paths []string, outPath string, streamCopy bool) error {
	if len(paths) == 1 && streamCopy {
		// Single input, nothing to join.
		if err := copyFile(paths[0], outPath); err != nil {
			return services.Wrap(services.ErrRender, "assemble", "concat", outPath, err)
		}
		return nil
	}

	listPath := outPath + ".txt"
	var list strings.Builder
	for _, path := range paths {
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(path, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return services.Wrap(services.ErrRender, "assemble", "concat", "write list file", err)
	}

	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", listPath}
	if streamCopy {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p", "-preset", "medium", "-crf", "23", "-c:a", "aac")
	}
	args = append(args, outPath)
	if out, err := a.run(ctx, a.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrRender, "assemble", "concat", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// mixMusic loops the track under the narration at the configured volume. The
// narration stays unattenuated; normalize=0 keeps amix from rescaling it.
func (a *Assembler) mixMusic(ctx context.Context, videoPath, musicPath string, volume float64, outPath string) error {
	if volume <= 0 {
		volume = 0.1
	}
	filter := fmt.Sprintf("[1:a]volume=%.3f[bed];[0:a][bed]amix=inputs=2:duration=first:normalize=0[mix]", volume)
	args := []string{
		"-y",
		"-i", videoPath,
		"-stream_loop", "-1", "-i", musicPath,
		"-filter_complex", filter,
		"-map", "0:v", "-map", "[mix]",
		"-c:v", "copy", "-c:a", "aac",
		"-movflags", "+faststart",
		outPath,
	}
	if out, err := a.run(ctx, a.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrAudioSync, "assemble", "mix music", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// finalize remuxes the combined clip with faststart metadata.
func (a *Assembler) finalize(ctx context.Context, videoPath, outPath string) error {
	args := []string{"-y", "-i", videoPath, "-c", "copy", "-movflags", "+faststart", outPath}
	if out, err := a.run(ctx, a.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrRender, "assemble", "finalize", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (a *Assembler) runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (a *Assembler) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	result, err := probe.Inspect(ctx, a.ffprobe, path)
	if err != nil {
		return 0, err
	}
	duration := result.Duration()
	if duration <= 0 {
		return 0, fmt.Errorf("no duration reported for %s", path)
	}
	return duration, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
