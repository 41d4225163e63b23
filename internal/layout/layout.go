package layout

import "math"

// Unit-square margin. Positions are clamped so node markers stay on canvas
// regardless of the ring radius.
const (
	clampMin = 0.05
	clampMax = 0.95
)

// Geometry holds the ring placement constants. They are policy, not physics:
// the defaults were chosen so a three-layer graph still clears the clamp
// margin at 16:9.
type Geometry struct {
	BaseRadius float64
	RadiusStep float64
	RadiusCap  float64
}

// DefaultGeometry returns the ring constants used when the config does not
// override them.
func DefaultGeometry() Geometry {
	return Geometry{BaseRadius: 0.15, RadiusStep: 0.12, RadiusCap: 0.35}
}

func (g Geometry) normalized() Geometry {
	out := g
	if out.BaseRadius <= 0 {
		out.BaseRadius = DefaultGeometry().BaseRadius
	}
	if out.RadiusStep <= 0 {
		out.RadiusStep = DefaultGeometry().RadiusStep
	}
	if out.RadiusCap <= 0 {
		out.RadiusCap = DefaultGeometry().RadiusCap
	}
	return out
}

// Point is a normalized screen position with both coordinates in
// [clampMin, clampMax].
type Point struct {
	X float64
	Y float64
}

// Position computes the ring position for a node index. Index 0 sits at the
// center; subsequent indices fill concentric layers of 6·L slots each. The
// function is pure: the same index always maps to the same point.
func Position(index int, geo Geometry) Point {
	if index <= 0 {
		return Point{X: 0.5, Y: 0.5}
	}
	geo = geo.normalized()

	layer := 1
	first := 1 // index of the first slot in the current layer
	for index >= first+6*layer {
		first += 6 * layer
		layer++
	}
	slot := index - first
	slots := 6 * layer

	angle := 2 * math.Pi * float64(slot) / float64(slots)
	radius := geo.BaseRadius + float64(layer-1)*geo.RadiusStep
	if radius > geo.RadiusCap {
		radius = geo.RadiusCap
	}

	return Point{
		X: clamp(0.5+radius*math.Cos(angle), clampMin, clampMax),
		Y: clamp(0.5+radius*math.Sin(angle), clampMin, clampMax),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// State memoizes positions for one video session. Bindings are append-only:
// once an index has a position it keeps it until Reset. State is not safe for
// concurrent use; the animator binds positions on its coordinating goroutine.
type State struct {
	geo       Geometry
	positions map[int]Point
}

// NewState constructs an empty session layout state.
func NewState(geo Geometry) *State {
	return &State{geo: geo.normalized(), positions: make(map[int]Point)}
}

// PositionFor returns the session position for index, computing and recording
// it on first use.
func (s *State) PositionFor(index int) Point {
	if p, ok := s.positions[index]; ok {
		return p
	}
	p := Position(index, s.geo)
	s.positions[index] = p
	return p
}

// Bound reports whether the index already has a recorded position.
func (s *State) Bound(index int) bool {
	_, ok := s.positions[index]
	return ok
}

// Len returns the number of bound indices.
func (s *State) Len() int {
	return len(s.positions)
}

// Reset discards all bindings. Call once per new video session, never between
// frames of the same session.
func (s *State) Reset() {
	s.positions = make(map[int]Point)
}
