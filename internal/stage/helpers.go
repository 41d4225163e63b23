package stage

import (
	"strings"

	"storyreel/internal/services"
	"storyreel/internal/storyboard"
)

// DecodeStoryboard decodes the compact storyboard encoding persisted on a
// job. Decode errors keep their storyboard sentinels so the workflow manager
// routes them to review.
func DecodeStoryboard(raw string) (*storyboard.Storyboard, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "decode storyboard",
			"storyboard text missing; rerun scripting", nil)
	}
	sb, err := storyboard.Decode(raw)
	if err != nil {
		return nil, err
	}
	return sb, nil
}
