package render

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Theme holds the palette the rasterizer draws with. Node color names from
// the storyboard resolve through Colors; unknown names fall back to Ink.
type Theme struct {
	Background color.RGBA
	Ink        color.RGBA
	Ghost      color.RGBA
	Caption    color.RGBA
	Colors     map[string]color.RGBA
}

type themeFile struct {
	Background string            `yaml:"background"`
	Ink        string            `yaml:"ink"`
	Ghost      string            `yaml:"ghost"`
	Caption    string            `yaml:"caption"`
	Colors     map[string]string `yaml:"colors"`
}

// DefaultTheme returns the built-in palette: dark slate canvas, light ink.
func DefaultTheme() Theme {
	return Theme{
		Background: color.RGBA{R: 0x12, G: 0x16, B: 0x20, A: 0xff},
		Ink:        color.RGBA{R: 0xe8, G: 0xea, B: 0xf0, A: 0xff},
		Ghost:      color.RGBA{R: 0x5a, G: 0x62, B: 0x70, A: 0xff},
		Caption:    color.RGBA{R: 0xe8, G: 0xea, B: 0xf0, A: 0xff},
		Colors: map[string]color.RGBA{
			"black":  {R: 0xe8, G: 0xea, B: 0xf0, A: 0xff}, // inverted on the dark canvas
			"white":  {R: 0xf8, G: 0xf8, B: 0xf8, A: 0xff},
			"red":    {R: 0xe5, G: 0x48, B: 0x4d, A: 0xff},
			"green":  {R: 0x4c, G: 0xb9, B: 0x6b, A: 0xff},
			"blue":   {R: 0x4a, G: 0x90, B: 0xd9, A: 0xff},
			"yellow": {R: 0xe8, G: 0xc5, B: 0x4a, A: 0xff},
			"orange": {R: 0xe8, G: 0x8c, B: 0x3a, A: 0xff},
			"purple": {R: 0x9b, G: 0x6b, B: 0xd3, A: 0xff},
			"gray":   {R: 0x9a, G: 0xa0, B: 0xac, A: 0xff},
			"grey":   {R: 0x9a, G: 0xa0, B: 0xac, A: 0xff},
		},
	}
}

// LoadTheme reads a YAML palette file and overlays it on the default theme.
// Missing keys keep their defaults, so a palette file can override a single
// color.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	data, err := os.ReadFile(path)
	if err != nil {
		return theme, fmt.Errorf("read theme: %w", err)
	}
	var raw themeFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return theme, fmt.Errorf("parse theme: %w", err)
	}

	assign := func(dst *color.RGBA, value string) error {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		parsed, err := ParseHexColor(value)
		if err != nil {
			return err
		}
		*dst = parsed
		return nil
	}
	if err := assign(&theme.Background, raw.Background); err != nil {
		return theme, fmt.Errorf("theme background: %w", err)
	}
	if err := assign(&theme.Ink, raw.Ink); err != nil {
		return theme, fmt.Errorf("theme ink: %w", err)
	}
	if err := assign(&theme.Ghost, raw.Ghost); err != nil {
		return theme, fmt.Errorf("theme ghost: %w", err)
	}
	if err := assign(&theme.Caption, raw.Caption); err != nil {
		return theme, fmt.Errorf("theme caption: %w", err)
	}
	for name, value := range raw.Colors {
		parsed, err := ParseHexColor(value)
		if err != nil {
			return theme, fmt.Errorf("theme color %q: %w", name, err)
		}
		theme.Colors[strings.ToLower(strings.TrimSpace(name))] = parsed
	}
	return theme, nil
}

// NodeColor resolves a storyboard color token against the palette. Hex
// strings pass through; unknown names fall back to Ink.
func (t Theme) NodeColor(token string) color.RGBA {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return t.Ink
	}
	if strings.HasPrefix(token, "#") {
		if parsed, err := ParseHexColor(token); err == nil {
			return parsed
		}
		return t.Ink
	}
	if c, ok := t.Colors[token]; ok {
		return c
	}
	return t.Ink
}

// ParseHexColor parses #rgb and #rrggbb notations.
func ParseHexColor(value string) (color.RGBA, error) {
	value = strings.TrimSpace(strings.TrimPrefix(value, "#"))
	switch len(value) {
	case 3:
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[2*i] = value[i]
			expanded[2*i+1] = value[i]
		}
		value = string(expanded)
	case 6:
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", value)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(value, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", value, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
