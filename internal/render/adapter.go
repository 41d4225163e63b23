package render

import (
	"context"
	"time"

	"storyreel/internal/scene"
)

// Segment is one rendered step on disk. (FrameIndex, StepIndex) preserves
// timeline order regardless of render concurrency.
type Segment struct {
	FrameIndex int
	StepIndex  int
	Path       string
	Duration   time.Duration
}

// Request carries one scene frame plus the step duration the segment should
// hold.
type Request struct {
	Frame    scene.Frame
	Duration time.Duration
	OutDir   string
}

// Adapter rasterizes scene frames into video segments. Implementations must
// be deterministic for identical input so engine output stays reproducible,
// and safe for concurrent RenderStep calls.
type Adapter interface {
	RenderStep(ctx context.Context, req Request) (Segment, error)
}
