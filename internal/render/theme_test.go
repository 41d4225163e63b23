package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	got, err := ParseHexColor("#4a90d9")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	want := color.RGBA{R: 0x4a, G: 0x90, B: 0xd9, A: 0xff}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}

	short, err := ParseHexColor("#fa0")
	if err != nil {
		t.Fatalf("ParseHexColor short: %v", err)
	}
	if short != (color.RGBA{R: 0xff, G: 0xaa, B: 0x00, A: 0xff}) {
		t.Fatalf("short form expanded wrong: %v", short)
	}

	if _, err := ParseHexColor("#12345"); err == nil {
		t.Fatal("odd-length hex should fail")
	}
	if _, err := ParseHexColor("#zzzzzz"); err == nil {
		t.Fatal("non-hex digits should fail")
	}
}

func TestNodeColorResolution(t *testing.T) {
	theme := DefaultTheme()

	if got := theme.NodeColor("blue"); got != theme.Colors["blue"] {
		t.Fatalf("named color = %v", got)
	}
	if got := theme.NodeColor("  RED "); got != theme.Colors["red"] {
		t.Fatalf("name lookup should trim and lowercase, got %v", got)
	}
	if got := theme.NodeColor("#010203"); got != (color.RGBA{R: 1, G: 2, B: 3, A: 0xff}) {
		t.Fatalf("hex passthrough = %v", got)
	}
	if got := theme.NodeColor("chartreuse-ish"); got != theme.Ink {
		t.Fatalf("unknown name should fall back to ink, got %v", got)
	}
	if got := theme.NodeColor(""); got != theme.Ink {
		t.Fatalf("empty token should fall back to ink, got %v", got)
	}
}

func TestLoadThemeOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	content := "background: \"#000000\"\ncolors:\n  blue: \"#112233\"\n  teal: \"#008080\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}

	theme, err := LoadTheme(path)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if theme.Background != (color.RGBA{A: 0xff}) {
		t.Fatalf("background override lost: %v", theme.Background)
	}
	if theme.Ink != DefaultTheme().Ink {
		t.Fatal("unset keys should keep defaults")
	}
	if theme.Colors["blue"] != (color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}) {
		t.Fatalf("blue override lost: %v", theme.Colors["blue"])
	}
	if _, ok := theme.Colors["teal"]; !ok {
		t.Fatal("new palette entries should be added")
	}
	if _, ok := theme.Colors["red"]; !ok {
		t.Fatal("default palette entries should survive the overlay")
	}
}

func TestLoadThemeRejectsBadColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	if err := os.WriteFile(path, []byte("ink: \"not-a-color\"\n"), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}
	if _, err := LoadTheme(path); err == nil {
		t.Fatal("invalid hex value should fail")
	}
}
