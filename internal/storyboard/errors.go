package storyboard

import "errors"

// Decode failures carry one of these markers so callers can classify them
// with errors.Is. Both are fatal to the session that submitted the encoding;
// a malformed storyboard is regenerated upstream, never repaired here.
var (
	// ErrParse marks structural violations of the wire grammar: wrong field
	// counts, malformed node or connection entries, bad index tokens, or
	// misuse of the NO_NODE sentinel.
	ErrParse = errors.New("storyboard parse error")

	// ErrGraphReference marks connections that reference node indices outside
	// the owning frame's node list.
	ErrGraphReference = errors.New("storyboard graph reference error")
)
