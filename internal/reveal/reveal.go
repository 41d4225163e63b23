package reveal

import (
	"sort"
	"time"

	"storyreel/internal/storyboard"
)

// Step is one instant of a frame's reveal animation. Nodes carries the full
// node list of the owning frame; VisibleNodes selects the revealed subset.
// Connections is the prefix of the frame's connections drawn so far.
type Step struct {
	FrameIndex  int
	Text        string
	Nodes       []storyboard.Node
	Connections []storyboard.Connection
	Visible     []int
	Duration    time.Duration
}

// IsVisible reports whether the node index is revealed in this step.
func (s Step) IsVisible(index int) bool {
	for _, v := range s.Visible {
		if v == index {
			return true
		}
	}
	return false
}

// Steps expands one frame into its ordered animation steps, each lasting
// stepDuration.
//
// A caption frame yields a single empty-visibility step. A frame with nodes
// but no connections reveals one node per step in index order. A frame with
// connections walks them in declared order: every endpoint not yet visible
// gets its own reveal step (ascending index, connection still undrawn), then
// one step draws the connection itself.
func Steps(frameIndex int, frame storyboard.Frame, stepDuration time.Duration) []Step {
	base := Step{
		FrameIndex: frameIndex,
		Text:       frame.Text,
		Nodes:      frame.Nodes,
		Duration:   stepDuration,
	}

	if len(frame.Nodes) == 0 {
		return []Step{base}
	}

	if len(frame.Connections) == 0 {
		steps := make([]Step, 0, len(frame.Nodes))
		for i := range frame.Nodes {
			step := base
			step.Visible = ascending(i + 1)
			steps = append(steps, step)
		}
		return steps
	}

	var steps []Step
	visible := make(map[int]struct{})
	for drawn, conn := range frame.Connections {
		for _, idx := range newEndpoints(conn, visible) {
			visible[idx] = struct{}{}
			step := base
			step.Visible = visibleSlice(visible)
			step.Connections = frame.Connections[:drawn]
			steps = append(steps, step)
		}
		step := base
		step.Visible = visibleSlice(visible)
		step.Connections = frame.Connections[:drawn+1]
		steps = append(steps, step)
	}
	return steps
}

// newEndpoints returns the connection's endpoints not yet visible, ascending.
func newEndpoints(conn storyboard.Connection, visible map[int]struct{}) []int {
	seen := make(map[int]struct{}, len(conn.Sources)+1)
	var fresh []int
	for _, idx := range append(append([]int(nil), conn.Sources...), conn.Target) {
		if _, ok := visible[idx]; ok {
			continue
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		fresh = append(fresh, idx)
	}
	sort.Ints(fresh)
	return fresh
}

func visibleSlice(visible map[int]struct{}) []int {
	out := make([]int, 0, len(visible))
	for idx := range visible {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func ascending(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
