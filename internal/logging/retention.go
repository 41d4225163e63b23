package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// RetentionTarget names a directory of log files eligible for pruning.
type RetentionTarget struct {
	Dir     string
	Pattern string
}

// CleanupOldLogs removes files older than maxAge from each target. Returns
// the number of files deleted. Missing directories are skipped.
func CleanupOldLogs(logger *slog.Logger, maxAge time.Duration, targets ...RetentionTarget) int {
	if logger == nil {
		logger = NewNop()
	}
	if maxAge <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxAge)

	removed := 0
	for _, target := range targets {
		if target.Dir == "" {
			continue
		}
		pattern := target.Pattern
		if pattern == "" {
			pattern = "*.log"
		}
		matches, err := filepath.Glob(filepath.Join(target.Dir, pattern))
		if err != nil {
			logger.Warn("log retention glob failed", String("dir", target.Dir), Error(err))
			continue
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil {
				logger.Warn("log retention remove failed", String("path", path), Error(err))
				continue
			}
			removed++
		}
	}
	return removed
}

// RetentionTargetsFor lists the directories the daemon prunes on startup.
func RetentionTargetsFor(logDir string) []RetentionTarget {
	if logDir == "" {
		return nil
	}
	return []RetentionTarget{
		{Dir: logDir, Pattern: "*.log"},
		{Dir: filepath.Join(logDir, "jobs"), Pattern: "*.log"},
	}
}
