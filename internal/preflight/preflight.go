package preflight

import (
	"context"

	"storyreel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	}
	if cfg.Paths.MusicDir != "" {
		results = append(results, CheckDirectoryAccess("Music directory", cfg.Paths.MusicDir))
	}

	results = append(results, CheckStagingDiskSpace(cfg.Paths.StagingDir))
	results = append(results, CheckLLM(ctx, "LLM API", cfg.LLM))

	if cfg.YouTube.Enabled {
		results = append(results, CheckYouTubeCredentials(cfg.YouTube))
	}

	return results
}
