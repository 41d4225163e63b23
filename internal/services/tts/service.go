// Package tts synthesizes narration audio by shelling out to an edge-tts
// compatible binary. Synthesis retries transient tool failures; a clip that
// still fails after the attempt budget fails the narrating stage.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const synthesisAttempts = 3

// Config captures the TTS tool settings.
type Config struct {
	Binary string
	Voice  string
	Rate   string
	Format string
}

// Service drives the external TTS binary.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
	sleeper       func(time.Duration)
}

// NewService creates a TTS service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "edge-tts"
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "en-US-GuyNeural"
	}
	return &Service{cfg: cfg, sleeper: time.Sleep}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithSleeper overrides the retry sleep (for testing).
func (s *Service) WithSleeper(sleeper func(time.Duration)) {
	if sleeper != nil {
		s.sleeper = sleeper
	}
}

// Binary returns the configured tool name for dependency checks.
func (s *Service) Binary() string {
	return s.cfg.Binary
}

// Synthesize renders text to speech at dest. The output format follows the
// dest extension (edge-tts emits mp3).
func (s *Service) Synthesize(ctx context.Context, text, dest string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("tts synthesize: empty text")
	}
	if dest == "" {
		return errors.New("tts synthesize: dest path required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("tts synthesize: ensure output dir: %w", err)
	}

	args := s.buildArgs(text, dest)
	var lastErr error
	for attempt := 1; attempt <= synthesisAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = s.run(ctx, s.cfg.Binary, args...)
		if lastErr == nil {
			return nil
		}
		if attempt < synthesisAttempts {
			s.sleeper(time.Duration(attempt) * time.Second)
		}
	}
	return fmt.Errorf("tts synthesize: failed after %d attempts: %w", synthesisAttempts, lastErr)
}

func (s *Service) buildArgs(text, dest string) []string {
	args := []string{
		"--voice", s.cfg.Voice,
		"--text", text,
		"--write-media", dest,
	}
	if rate := strings.TrimSpace(s.cfg.Rate); rate != "" {
		args = append(args, "--rate", rate)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
