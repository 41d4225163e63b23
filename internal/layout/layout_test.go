package layout_test

import (
	"math"
	"testing"

	"storyreel/internal/layout"
)

func TestPositionCenterForIndexZero(t *testing.T) {
	p := layout.Position(0, layout.DefaultGeometry())
	if p.X != 0.5 || p.Y != 0.5 {
		t.Fatalf("index 0 = (%v, %v), want center", p.X, p.Y)
	}
}

func TestPositionFirstLayerSlots(t *testing.T) {
	geo := layout.DefaultGeometry()
	// Index 1 is slot 0 of layer 1: angle 0, radius = base.
	p := layout.Position(1, geo)
	if math.Abs(p.X-(0.5+geo.BaseRadius)) > 1e-9 {
		t.Fatalf("index 1 x = %v, want %v", p.X, 0.5+geo.BaseRadius)
	}
	if math.Abs(p.Y-0.5) > 1e-9 {
		t.Fatalf("index 1 y = %v, want 0.5", p.Y)
	}
}

func TestPositionLayerBoundaries(t *testing.T) {
	geo := layout.DefaultGeometry()
	// Layer 1 holds indices 1..6, layer 2 holds 7..18. Index 7 restarts at
	// angle 0 on the wider ring.
	inner := layout.Position(6, geo)
	outer := layout.Position(7, geo)
	if math.Abs(outer.Y-0.5) > 1e-9 {
		t.Fatalf("index 7 y = %v, want 0.5 (slot 0)", outer.Y)
	}
	innerR := math.Hypot(inner.X-0.5, inner.Y-0.5)
	outerR := math.Hypot(outer.X-0.5, outer.Y-0.5)
	if outerR <= innerR {
		t.Fatalf("layer 2 radius %v not greater than layer 1 radius %v", outerR, innerR)
	}
}

func TestPositionRadiusCap(t *testing.T) {
	geo := layout.Geometry{BaseRadius: 0.15, RadiusStep: 0.12, RadiusCap: 0.35}
	// Layer 4 would reach 0.15 + 3*0.12 = 0.51 uncapped. First slot of layer
	// 4 is index 1+6+12+18 = 37.
	p := layout.Position(37, geo)
	radius := math.Hypot(p.X-0.5, p.Y-0.5)
	if radius > geo.RadiusCap+1e-9 {
		t.Fatalf("radius %v exceeds cap %v", radius, geo.RadiusCap)
	}
}

func TestPositionStaysInsideMargins(t *testing.T) {
	geo := layout.Geometry{BaseRadius: 0.6, RadiusStep: 0.3, RadiusCap: 2}
	for i := 0; i < 64; i++ {
		p := layout.Position(i, geo)
		if p.X < 0.05 || p.X > 0.95 || p.Y < 0.05 || p.Y > 0.95 {
			t.Fatalf("index %d position (%v, %v) outside margins", i, p.X, p.Y)
		}
	}
}

func TestStateMemoizesBindings(t *testing.T) {
	state := layout.NewState(layout.DefaultGeometry())
	first := state.PositionFor(4)
	second := state.PositionFor(4)
	if first != second {
		t.Fatalf("repeated lookup returned %v then %v", first, second)
	}
	if !state.Bound(4) {
		t.Fatal("index 4 should be bound")
	}
	if state.Bound(5) {
		t.Fatal("index 5 should not be bound yet")
	}
}

func TestStateIndependentSessionsAgree(t *testing.T) {
	a := layout.NewState(layout.DefaultGeometry())
	b := layout.NewState(layout.DefaultGeometry())
	// Binding order differs; values must not.
	for _, i := range []int{9, 2, 5} {
		a.PositionFor(i)
	}
	for _, i := range []int{5, 9, 2} {
		b.PositionFor(i)
	}
	for _, i := range []int{2, 5, 9} {
		if a.PositionFor(i) != b.PositionFor(i) {
			t.Fatalf("sessions disagree on index %d", i)
		}
	}
}

func TestStateReset(t *testing.T) {
	state := layout.NewState(layout.DefaultGeometry())
	state.PositionFor(1)
	state.PositionFor(2)
	state.Reset()
	if state.Len() != 0 {
		t.Fatalf("Len after reset = %d, want 0", state.Len())
	}
}
