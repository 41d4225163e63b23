// Package storyboard defines the storyboard data model and the compact wire
// grammar the script generator emits.
//
// A storyboard is an ordered list of frames. Each frame carries a label, the
// narration text, the diagram nodes revealed during the frame, and the
// connections drawn between them. The textual encoding round-trips through
// Decode and Encode so storyboards can be persisted between pipeline stages
// and regenerated into fixtures.
package storyboard
