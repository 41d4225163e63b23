// Package deps reports the availability of the external tools and system
// resources the pipeline leans on: ffmpeg/ffprobe for rendering and
// assembly, the TTS binary for narration, plus CPU and memory headroom for
// sizing the render worker pool.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"storyreel/internal/config"
)

// Requirement defines an external binary the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if resolved, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		} else {
			status.Command = resolved
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// SystemRequirements lists the binaries the daemon needs for the given
// configuration.
func SystemRequirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for segment encoding and timeline assembly",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for narration duration probing",
		},
		{
			Name:        "TTS",
			Command:     cfg.TTS.Binary,
			Description: "Required for narration synthesis",
		},
	}
}

// CheckSystemDeps evaluates all binary dependencies for the given config.
// Both the daemon and the CLI status command use this to keep the
// requirements list in one place.
func CheckSystemDeps(cfg *config.Config) []Status {
	return CheckBinaries(SystemRequirements(cfg))
}
