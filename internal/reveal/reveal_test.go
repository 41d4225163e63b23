package reveal_test

import (
	"testing"
	"time"

	"storyreel/internal/reveal"
	"storyreel/internal/storyboard"
)

const stepDur = 2 * time.Second

func TestStepsCaptionFrame(t *testing.T) {
	frame := storyboard.Frame{Label: "1", Text: "Intro"}
	steps := reveal.Steps(0, frame, stepDur)
	if len(steps) != 1 {
		t.Fatalf("caption frame yielded %d steps, want 1", len(steps))
	}
	step := steps[0]
	if len(step.Visible) != 0 || len(step.Connections) != 0 {
		t.Fatalf("caption step should be empty, got visible=%v connections=%v", step.Visible, step.Connections)
	}
	if step.Text != "Intro" || step.Duration != stepDur {
		t.Fatalf("unexpected step metadata: %+v", step)
	}
}

func TestStepsNodesWithoutConnections(t *testing.T) {
	frame := storyboard.Frame{
		Text: "nodes only",
		Nodes: []storyboard.Node{
			{Shape: storyboard.ShapeBox, Label: "A"},
			{Shape: storyboard.ShapeBox, Label: "B"},
			{Shape: storyboard.ShapeBox, Label: "C"},
		},
	}
	steps := reveal.Steps(2, frame, stepDur)
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(steps))
	}
	for i, step := range steps {
		if len(step.Visible) != i+1 {
			t.Fatalf("step %d shows %d nodes, want %d", i, len(step.Visible), i+1)
		}
		if len(step.Connections) != 0 {
			t.Fatalf("step %d draws connections in a connection-free frame", i)
		}
		if step.FrameIndex != 2 {
			t.Fatalf("step %d frame index = %d, want 2", i, step.FrameIndex)
		}
	}
}

func TestStepsNodesPrecedeTheirConnections(t *testing.T) {
	frame := storyboard.Frame{
		Text: "chain",
		Nodes: []storyboard.Node{
			{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "D"},
		},
		Connections: []storyboard.Connection{
			{Sources: []int{0, 1}, Target: 2},
			{Sources: []int{2}, Target: 3},
		},
	}
	steps := reveal.Steps(0, frame, stepDur)

	// Connection 1: reveal 0, 1, 2 then draw. Connection 2: reveal 3 then draw.
	if len(steps) != 6 {
		t.Fatalf("got %d steps, want 6", len(steps))
	}
	wantVisible := [][]int{{0}, {0, 1}, {0, 1, 2}, {0, 1, 2}, {0, 1, 2, 3}, {0, 1, 2, 3}}
	wantConns := []int{0, 0, 0, 1, 1, 2}
	for i, step := range steps {
		if len(step.Visible) != len(wantVisible[i]) {
			t.Fatalf("step %d visible = %v, want %v", i, step.Visible, wantVisible[i])
		}
		for j, idx := range wantVisible[i] {
			if step.Visible[j] != idx {
				t.Fatalf("step %d visible = %v, want %v", i, step.Visible, wantVisible[i])
			}
		}
		if len(step.Connections) != wantConns[i] {
			t.Fatalf("step %d draws %d connections, want %d", i, len(step.Connections), wantConns[i])
		}
	}
}

func TestStepsConnectionEndpointsAlwaysVisible(t *testing.T) {
	frame := storyboard.Frame{
		Text: "dijkstra",
		Nodes: []storyboard.Node{
			{Label: "start"}, {Label: "a"}, {Label: "b"}, {Label: "goal"}, {Label: "alt"},
		},
		Connections: []storyboard.Connection{
			{Sources: []int{0}, Target: 1},
			{Sources: []int{0}, Target: 2},
			{Sources: []int{1, 2}, Target: 3},
			{Sources: []int{4}, Target: 3},
		},
	}
	for i, step := range reveal.Steps(0, frame, stepDur) {
		for _, conn := range step.Connections {
			for _, src := range conn.Sources {
				if !step.IsVisible(src) {
					t.Fatalf("step %d draws connection from hidden node %d", i, src)
				}
			}
			if !step.IsVisible(conn.Target) {
				t.Fatalf("step %d draws connection to hidden node %d", i, conn.Target)
			}
		}
	}
}

func TestStepsVisibilityNeverShrinks(t *testing.T) {
	frame := storyboard.Frame{
		Text:  "growth",
		Nodes: []storyboard.Node{{Label: "x"}, {Label: "y"}, {Label: "z"}},
		Connections: []storyboard.Connection{
			{Sources: []int{0}, Target: 1},
			{Sources: []int{1}, Target: 2},
			{Sources: []int{0}, Target: 2},
		},
	}
	steps := reveal.Steps(0, frame, stepDur)
	for i := 1; i < len(steps); i++ {
		if len(steps[i].Visible) < len(steps[i-1].Visible) {
			t.Fatalf("visibility shrank at step %d", i)
		}
		if len(steps[i].Connections) < len(steps[i-1].Connections) {
			t.Fatalf("drawn connections shrank at step %d", i)
		}
	}
}

func TestStepsSharedEndpointRevealedOnce(t *testing.T) {
	frame := storyboard.Frame{
		Text:  "self-referential sources",
		Nodes: []storyboard.Node{{Label: "a"}, {Label: "b"}},
		Connections: []storyboard.Connection{
			// Target also appears in sources; it must be revealed exactly once.
			{Sources: []int{0, 1}, Target: 1},
		},
	}
	steps := reveal.Steps(0, frame, stepDur)
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want 3 (two reveals + one draw)", len(steps))
	}
}

func TestStepsTextConstantAcrossFrame(t *testing.T) {
	frame := storyboard.Frame{
		Text:  "constant caption",
		Nodes: []storyboard.Node{{Label: "a"}, {Label: "b"}},
		Connections: []storyboard.Connection{
			{Sources: []int{0}, Target: 1},
		},
	}
	for i, step := range reveal.Steps(0, frame, stepDur) {
		if step.Text != "constant caption" {
			t.Fatalf("step %d text = %q", i, step.Text)
		}
	}
}
