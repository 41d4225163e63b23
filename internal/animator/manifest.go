package animator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"storyreel/internal/render"
	"storyreel/internal/services"
)

// ManifestName is the segment index file written next to the segments.
const ManifestName = "segments.json"

type manifestEntry struct {
	FrameIndex int     `json:"frame_index"`
	StepIndex  int     `json:"step_index"`
	File       string  `json:"file"`
	Seconds    float64 `json:"seconds"`
}

// WriteManifest records the ordered segment list in dir. Paths are stored
// relative to dir so the staging area can move without invalidating it.
func WriteManifest(dir string, segments []render.Segment) error {
	entries := make([]manifestEntry, len(segments))
	for i, segment := range segments {
		entries[i] = manifestEntry{
			FrameIndex: segment.FrameIndex,
			StepIndex:  segment.StepIndex,
			File:       filepath.Base(segment.Path),
			Seconds:    segment.Duration.Seconds(),
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrRender, "animating", "write manifest", "failed to encode segment manifest", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644); err != nil {
		return services.Wrap(services.ErrRender, "animating", "write manifest", "failed to write segment manifest", err)
	}
	return nil
}

// ReadManifest loads the segment list written by WriteManifest, resolving
// paths against dir.
func ReadManifest(dir string) ([]render.Segment, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "assembling", "read manifest",
			fmt.Sprintf("segment manifest missing in %s", dir), err)
	}
	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, services.Wrap(services.ErrValidation, "assembling", "read manifest", "segment manifest is corrupt", err)
	}
	segments := make([]render.Segment, len(entries))
	for i, entry := range entries {
		segments[i] = render.Segment{
			FrameIndex: entry.FrameIndex,
			StepIndex:  entry.StepIndex,
			Path:       filepath.Join(dir, entry.File),
			Duration:   time.Duration(entry.Seconds * float64(time.Second)),
		}
	}
	return segments, nil
}
