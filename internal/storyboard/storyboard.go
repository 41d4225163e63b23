package storyboard

import "strings"

// Shape identifies the marker drawn for a node. Unrecognized shape tokens
// collapse to ShapeUnknown at decode time; renderers draw those as circles.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeCircle   Shape = "circle"
	ShapeTriangle Shape = "triangle"
	ShapeDiamond  Shape = "diamond"
	ShapePentagon Shape = "pentagon"
	ShapeHexagon  Shape = "hexagon"
	ShapeStar     Shape = "star"
	ShapeOval     Shape = "oval"
	ShapeUnknown  Shape = "unknown"
)

// ParseShape normalizes a shape token from the wire encoding. Square is the
// same marker as box.
func ParseShape(token string) Shape {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "box", "square", "rect", "rectangle":
		return ShapeBox
	case "circle", "dot", "point":
		return ShapeCircle
	case "triangle":
		return ShapeTriangle
	case "diamond", "rhombus":
		return ShapeDiamond
	case "pentagon":
		return ShapePentagon
	case "hexagon":
		return ShapeHexagon
	case "star":
		return ShapeStar
	case "oval", "ellipse":
		return ShapeOval
	default:
		return ShapeUnknown
	}
}

// Node is one diagram element within a frame.
type Node struct {
	Shape Shape
	Color string
	Label string
}

// Connection links one or more source nodes to a target node. Indices refer
// to the owning frame's node list. Sources is always non-empty; the wire
// form's single-source shorthand is normalized during decode.
type Connection struct {
	Sources []int
	Target  int
}

// Frame is one storyboard beat: a caption plus the diagram state revealed
// while the caption is narrated. A frame with no nodes is a caption card.
type Frame struct {
	Label       string
	Text        string
	Nodes       []Node
	Connections []Connection
}

// IsCaption reports whether the frame carries no diagram content.
func (f Frame) IsCaption() bool {
	return len(f.Nodes) == 0
}

// Storyboard is the ordered frame sequence for one video. Frame order is a
// hard invariant: it is the film-strip order of the final timeline.
type Storyboard struct {
	Frames []Frame
}

// FrameTexts returns the narration text of every frame in order.
func (s *Storyboard) FrameTexts() []string {
	texts := make([]string, len(s.Frames))
	for i, f := range s.Frames {
		texts[i] = f.Text
	}
	return texts
}
