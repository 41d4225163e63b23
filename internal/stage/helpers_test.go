package stage

import (
	"errors"
	"testing"

	"storyreel/internal/services"
	"storyreel/internal/storyboard"
)

func TestDecodeStoryboard_Valid(t *testing.T) {
	sb, err := DecodeStoryboard("Intro?welcome narration?NO_NODE?NO_NODE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sb.Frames) != 1 || sb.Frames[0].Label != "Intro" {
		t.Fatalf("unexpected storyboard: %+v", sb)
	}
}

func TestDecodeStoryboard_Empty(t *testing.T) {
	_, err := DecodeStoryboard("   ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeStoryboard_ParseErrorKeepsSentinel(t *testing.T) {
	_, err := DecodeStoryboard("only two?fields")
	if !errors.Is(err, storyboard.ErrParse) {
		t.Fatalf("expected parse sentinel, got %v", err)
	}
}
