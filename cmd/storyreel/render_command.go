package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/animator"
	"storyreel/internal/layout"
	"storyreel/internal/render"
	"storyreel/internal/storyboard"
	"storyreel/internal/timeline"
)

// newRenderCommand renders a storyboard straight to a video without touching
// the queue. Narration and music are skipped; each step holds for the
// configured step duration.
func newRenderCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "render [storyboard]",
		Short: "Render a storyboard encoding to a video",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := storyboardInput(args, filePath)
			if err != nil {
				return err
			}
			board, err := storyboard.Decode(raw)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			theme := render.DefaultTheme()
			if cfg.Engine.ThemeFile != "" {
				theme, err = render.LoadTheme(cfg.Engine.ThemeFile)
				if err != nil {
					return err
				}
			}
			rasterizer, err := render.NewRasterizer(render.Options{
				Width:  cfg.Video.Width,
				Height: cfg.Video.Height,
				FPS:    cfg.Video.FPS,
				FFmpeg: cfg.FFmpegBinary(),
				Theme:  theme,
			})
			if err != nil {
				return err
			}

			workDir, err := os.MkdirTemp("", "storyreel-render-")
			if err != nil {
				return fmt.Errorf("create work dir: %w", err)
			}
			defer os.RemoveAll(workDir)

			geometry := layout.Geometry{
				BaseRadius: cfg.Engine.RingBase,
				RadiusStep: cfg.Engine.RingStep,
				RadiusCap:  cfg.Engine.RingCap,
			}
			stepDuration := time.Duration(cfg.Video.StepSeconds * float64(time.Second))
			requests := animator.BuildRequests(board, geometry, cfg.Engine.Continuity, stepDuration, workDir)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rendering %d steps across %d frames\n", len(requests), len(board.Frames))

			byFrame := make(map[int][]render.Segment)
			for _, req := range requests {
				segment, err := rasterizer.RenderStep(cmd.Context(), req)
				if err != nil {
					return err
				}
				byFrame[segment.FrameIndex] = append(byFrame[segment.FrameIndex], segment)
			}

			frames := make([]timeline.FramePlan, 0, len(board.Frames))
			for frameIndex := range board.Frames {
				frames = append(frames, timeline.FramePlan{
					FrameIndex: frameIndex,
					Segments:   byFrame[frameIndex],
				})
			}

			target, err := filepath.Abs(outPath)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			assembler := timeline.NewAssembler(cfg.FFmpegBinary(), cfg.FFprobeBinary())
			finalPath, err := assembler.Compose(cmd.Context(), timeline.Plan{
				Frames:     frames,
				WorkDir:    workDir,
				OutputPath: target,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s\n", finalPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read the storyboard encoding from a file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "storyboard.mp4", "Output video path")
	return cmd
}
