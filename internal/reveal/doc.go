// Package reveal expands a storyboard frame into its progressive-reveal
// animation steps.
//
// A step is one rendered instant: the set of nodes visible so far plus the
// connections already drawn. Visibility only grows within a frame, a node is
// always revealed before any connection that touches it, and the frame's
// narration text stays constant across its steps.
package reveal
