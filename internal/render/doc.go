// Package render turns resolved scene frames into video segments.
//
// Adapter is the contract the animator consumes; Rasterizer is the bundled
// backend, drawing each frame onto an RGBA canvas and looping the still into
// a short H.264 segment with ffmpeg. Any deterministic backend satisfying
// Adapter can replace it.
package render
