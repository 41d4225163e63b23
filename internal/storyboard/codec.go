package storyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Wire-grammar separators. Frame label and text are free text that must not
// contain any of these characters; that is a contract on the generator, the
// decoder only enforces structure.
const (
	FrameSeparator      = "$"
	FieldSeparator      = "?"
	NodeSeparator       = ","
	NodeFieldSeparator  = ":"
	ConnectionSeparator = ";"
	SourceSeparator     = ","

	// NoNodeSentinel marks a caption-only frame in both the node and the
	// connection field.
	NoNodeSentinel = "NO_NODE"
)

// Decode parses the wire encoding into a Storyboard.
//
// The grammar is
//
//	story    := frame ("$" frame)*
//	frame    := label "?" text "?" nodeSpec "?" connSpec
//	nodeSpec := "NO_NODE" | shape ":" color ":" label ("," ...)*
//	connSpec := "NO_NODE" | sources ":" target (";" ...)*
//	sources  := index ("," index)*
//
// Structural violations return ErrParse; connection indices outside the
// frame's node range return ErrGraphReference. A NO_NODE node field forces a
// NO_NODE connection field.
func Decode(encoded string) (*Storyboard, error) {
	trimmed := strings.TrimSpace(encoded)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty encoding", ErrParse)
	}
	rawFrames := strings.Split(trimmed, FrameSeparator)
	frames := make([]Frame, 0, len(rawFrames))
	for i, raw := range rawFrames {
		frame, err := decodeFrame(raw)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames = append(frames, frame)
	}
	return &Storyboard{Frames: frames}, nil
}

func decodeFrame(raw string) (Frame, error) {
	fields := strings.Split(raw, FieldSeparator)
	if len(fields) != 4 {
		return Frame{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrParse, len(fields))
	}

	frame := Frame{
		Label: strings.TrimSpace(fields[0]),
		Text:  strings.TrimSpace(fields[1]),
	}

	nodeSpec := strings.TrimSpace(fields[2])
	connSpec := strings.TrimSpace(fields[3])
	if nodeSpec == NoNodeSentinel && connSpec != NoNodeSentinel {
		return Frame{}, fmt.Errorf("%w: caption frame declares connections", ErrParse)
	}

	nodes, err := decodeNodes(nodeSpec)
	if err != nil {
		return Frame{}, err
	}
	frame.Nodes = nodes

	conns, err := decodeConnections(connSpec, len(nodes))
	if err != nil {
		return Frame{}, err
	}
	frame.Connections = conns
	return frame, nil
}

func decodeNodes(spec string) ([]Node, error) {
	if spec == NoNodeSentinel {
		return nil, nil
	}
	if spec == "" {
		return nil, fmt.Errorf("%w: empty node field", ErrParse)
	}
	entries := strings.Split(spec, NodeSeparator)
	nodes := make([]Node, 0, len(entries))
	for i, entry := range entries {
		parts := strings.Split(entry, NodeFieldSeparator)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: node %d: expected shape:color:label, got %q", ErrParse, i, strings.TrimSpace(entry))
		}
		nodes = append(nodes, Node{
			Shape: ParseShape(parts[0]),
			Color: strings.ToLower(strings.TrimSpace(parts[1])),
			Label: strings.TrimSpace(parts[2]),
		})
	}
	return nodes, nil
}

func decodeConnections(spec string, nodeCount int) ([]Connection, error) {
	if spec == NoNodeSentinel {
		return nil, nil
	}
	if spec == "" {
		return nil, fmt.Errorf("%w: empty connection field", ErrParse)
	}
	entries := strings.Split(spec, ConnectionSeparator)
	conns := make([]Connection, 0, len(entries))
	for i, entry := range entries {
		parts := strings.Split(entry, NodeFieldSeparator)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: connection %d: expected sources:target, got %q", ErrParse, i, strings.TrimSpace(entry))
		}

		rawSources := strings.Split(parts[0], SourceSeparator)
		sources := make([]int, 0, len(rawSources))
		for _, tok := range rawSources {
			idx, err := decodeIndex(tok)
			if err != nil {
				return nil, fmt.Errorf("connection %d: source: %w", i, err)
			}
			if idx >= nodeCount {
				return nil, fmt.Errorf("%w: connection %d references node %d of %d", ErrGraphReference, i, idx, nodeCount)
			}
			sources = append(sources, idx)
		}

		target, err := decodeIndex(parts[1])
		if err != nil {
			return nil, fmt.Errorf("connection %d: target: %w", i, err)
		}
		if target >= nodeCount {
			return nil, fmt.Errorf("%w: connection %d references node %d of %d", ErrGraphReference, i, target, nodeCount)
		}
		conns = append(conns, Connection{Sources: sources, Target: target})
	}
	return conns, nil
}

func decodeIndex(tok string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("%w: index %q is not a non-negative integer", ErrParse, strings.TrimSpace(tok))
	}
	return idx, nil
}

// Encode renders the storyboard back into the wire grammar. Decoding the
// result yields a storyboard identical to the input, which makes Encode the
// fixture generator for codec tests and the persistence form between
// pipeline stages.
func Encode(sb *Storyboard) string {
	if sb == nil || len(sb.Frames) == 0 {
		return ""
	}
	frames := make([]string, len(sb.Frames))
	for i, f := range sb.Frames {
		frames[i] = encodeFrame(f)
	}
	return strings.Join(frames, FrameSeparator)
}

func encodeFrame(f Frame) string {
	nodeSpec := NoNodeSentinel
	if len(f.Nodes) > 0 {
		entries := make([]string, len(f.Nodes))
		for i, n := range f.Nodes {
			entries[i] = strings.Join([]string{string(n.Shape), n.Color, n.Label}, NodeFieldSeparator)
		}
		nodeSpec = strings.Join(entries, NodeSeparator)
	}

	connSpec := NoNodeSentinel
	if len(f.Connections) > 0 {
		entries := make([]string, len(f.Connections))
		for i, c := range f.Connections {
			sources := make([]string, len(c.Sources))
			for j, s := range c.Sources {
				sources[j] = strconv.Itoa(s)
			}
			entries[i] = strings.Join(sources, SourceSeparator) + NodeFieldSeparator + strconv.Itoa(c.Target)
		}
		connSpec = strings.Join(entries, ConnectionSeparator)
	}

	return strings.Join([]string{f.Label, f.Text, nodeSpec, connSpec}, FieldSeparator)
}
