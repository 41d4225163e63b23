package scene

import (
	"storyreel/internal/layout"
	"storyreel/internal/reveal"
	"storyreel/internal/storyboard"
)

// Presentation constants. Marker size and font size derive from label length
// so long labels stay legible without dwarfing the diagram. Values are policy
// carried over from the reference renderer.
const (
	sizeIntercept = 2500
	sizePerRune   = 220
	sizeFloor     = 3000
	sizeCeil      = 8000

	fontBudget = 120.0
	fontFloor  = 8.0
	fontCeil   = 12.0
)

// PlacedNode is a node with its resolved position and presentation
// parameters. Renderers consume these without any engine knowledge.
type PlacedNode struct {
	Node   storyboard.Node
	Index  int
	X      float64
	Y      float64
	Size   float64
	FontPt float64
}

// Edge is a fully resolved connection endpoint pair.
type Edge struct {
	FromX, FromY float64
	ToX, ToY     float64
}

// Frame is one render-ready instant: live nodes and edges at full opacity,
// ghost nodes de-emphasized. StepIndex orders frames within a storyboard
// frame; (FrameIndex, StepIndex) orders the whole session.
type Frame struct {
	FrameIndex int
	StepIndex  int
	Caption    string
	Nodes      []PlacedNode
	Edges      []Edge
	Ghosts     []PlacedNode
}

// Machine carries layout and continuity state across the steps of one video
// session. Not safe for concurrent use; the animator resolves steps on its
// coordinating goroutine and only fans out the rendering itself.
type Machine struct {
	layout     *layout.State
	continuity bool

	populated bool
	prevNodes []storyboard.Node
}

// NewMachine constructs a session machine. With continuity enabled, nodes
// from the previous frame that the current step no longer shows are rendered
// as ghosts.
func NewMachine(geo layout.Geometry, continuity bool) *Machine {
	return &Machine{layout: layout.NewState(geo), continuity: continuity}
}

// Resolve turns an animation step into a render-ready frame, binding layout
// positions for any node index seen for the first time this session.
func (m *Machine) Resolve(stepIndex int, step reveal.Step) Frame {
	frame := Frame{
		FrameIndex: step.FrameIndex,
		StepIndex:  stepIndex,
		Caption:    step.Text,
	}

	for i := range step.Nodes {
		m.layout.PositionFor(i)
	}

	for _, idx := range step.Visible {
		frame.Nodes = append(frame.Nodes, m.place(idx, step.Nodes[idx]))
	}

	for _, conn := range step.Connections {
		target := m.layout.PositionFor(conn.Target)
		for _, src := range conn.Sources {
			from := m.layout.PositionFor(src)
			frame.Edges = append(frame.Edges, Edge{
				FromX: from.X, FromY: from.Y,
				ToX: target.X, ToY: target.Y,
			})
		}
	}

	if m.continuity && m.populated {
		frame.Ghosts = m.ghosts(step)
	}
	return frame
}

// FinishFrame records the rendered frame's node set as the continuity
// baseline for the next storyboard frame. Call after the last step of each
// frame.
func (m *Machine) FinishFrame(nodes []storyboard.Node) {
	m.prevNodes = nodes
	m.populated = true
}

// Reset returns the machine to its session-start state. Invoke exactly once
// per new video session; continuity must survive frame boundaries within a
// session.
func (m *Machine) Reset() {
	m.layout.Reset()
	m.prevNodes = nil
	m.populated = false
}

// ghosts returns the previous frame's nodes that the step does not show,
// drawn from the records they had when last visible. A ghost may belong to a
// storyboard frame that has since been superseded.
func (m *Machine) ghosts(step reveal.Step) []PlacedNode {
	var out []PlacedNode
	for idx, node := range m.prevNodes {
		if step.IsVisible(idx) {
			continue
		}
		out = append(out, m.place(idx, node))
	}
	return out
}

func (m *Machine) place(index int, node storyboard.Node) PlacedNode {
	pos := m.layout.PositionFor(index)
	return PlacedNode{
		Node:   node,
		Index:  index,
		X:      pos.X,
		Y:      pos.Y,
		Size:   NodeSize(node.Label),
		FontPt: FontSize(node.Label),
	}
}

// NodeSize returns the marker area for a label.
func NodeSize(label string) float64 {
	size := float64(sizeIntercept + sizePerRune*len([]rune(label)))
	if size < sizeFloor {
		return sizeFloor
	}
	if size > sizeCeil {
		return sizeCeil
	}
	return size
}

// FontSize returns the label font size in points.
func FontSize(label string) float64 {
	runes := len([]rune(label))
	if runes < 1 {
		runes = 1
	}
	size := fontBudget / float64(runes)
	if size < fontFloor {
		return fontFloor
	}
	if size > fontCeil {
		return fontCeil
	}
	return size
}
