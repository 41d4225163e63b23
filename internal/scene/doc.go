// Package scene resolves animation steps into render-ready frames.
//
// It owns the per-session continuity state: node positions bind through the
// layout memo on first sight, and the node records of the most recently
// rendered frame survive so nodes dropped by the next frame can be drawn as
// faded ghosts at their old positions.
package scene
