// Package layout assigns deterministic screen positions to diagram nodes.
//
// Positions come from a pure ring formula over the node index, then get
// memoized into a session-scoped State so a node keeps its spot for the
// whole video even when later frames redraw it.
package layout
