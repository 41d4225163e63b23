// Package daemonrun bootstraps the storyreel daemon process: configuration,
// logging, the job store, the stage pipeline, and signal-driven shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"storyreel/internal/animator"
	"storyreel/internal/assembler"
	"storyreel/internal/config"
	"storyreel/internal/daemon"
	"storyreel/internal/deps"
	"storyreel/internal/logging"
	"storyreel/internal/narrator"
	"storyreel/internal/notifications"
	"storyreel/internal/preflight"
	"storyreel/internal/queue"
	"storyreel/internal/scriptgen"
	"storyreel/internal/uploader"
	"storyreel/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the storyreel daemon and blocks until the context is cancelled
// or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if cfg.Logging.RetentionDays > 0 {
		maxAge := time.Duration(cfg.Logging.RetentionDays) * 24 * time.Hour
		if removed := logging.CleanupOldLogs(logger, maxAge, logging.RetentionTargetsFor(cfg.Paths.LogDir)...); removed > 0 {
			logger.Info("removed expired log files", logging.Int("count", removed))
		}
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "storyreeld.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	if reset, err := store.ResetStuckProcessing(signalCtx); err != nil {
		logger.Warn("failed to reset stranded jobs", logging.Error(err))
	} else if reset > 0 {
		logger.Info("reset stranded jobs to pending", logging.Int64("count", reset))
	}

	logPreflight(logger, preflight.RunAll(signalCtx, cfg))
	logDependencySnapshot(logger, cfg)

	notifier := notifications.NewService(cfg)
	wf := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)

	stages, err := buildStages(cfg, store, logger)
	if err != nil {
		return err
	}
	wf.ConfigureStages(stages)

	d, err := daemon.New(cfg, store, logger, wf, notifier)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("storyreel daemon shutting down")
	d.Stop()
	return nil
}

// buildStages wires the concrete pipeline handlers. The uploader is only
// attached when YouTube publishing is enabled; otherwise jobs finish at
// assembly.
func buildStages(cfg *config.Config, store *queue.Store, logger *slog.Logger) (workflow.StageSet, error) {
	animatorStage, err := animator.New(cfg, store, logger)
	if err != nil {
		return workflow.StageSet{}, fmt.Errorf("init animator: %w", err)
	}

	set := workflow.StageSet{
		Scripter:  scriptgen.New(cfg, store, logger),
		Narrator:  narrator.New(cfg, store, logger),
		Animator:  animatorStage,
		Assembler: assembler.New(cfg, store, logger),
	}
	if cfg.YouTube.Enabled {
		set.Uploader = uploader.New(cfg, store, logger)
	}
	return set, nil
}

func logPreflight(logger *slog.Logger, results []preflight.Result) {
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed", logging.String("check", result.Name))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	for _, status := range deps.CheckSystemDeps(cfg) {
		attrs := []logging.Attr{
			logging.String("dependency", status.Name),
			logging.Bool("available", status.Available),
		}
		if status.Detail != "" {
			attrs = append(attrs, logging.String("detail", status.Detail))
		}
		logger.Info("dependency status", logging.Args(attrs...)...)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
