// Package timeline assembles rendered segments and narration audio into the
// final video. Per frame it concatenates the step segments, stretches the
// visuals to cover the narration when needed, and muxes the audio; frame
// clips then concatenate in storyboard order and an optional music bed is
// mixed underneath without attenuating the narration.
package timeline
