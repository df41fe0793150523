package mouth

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Palette maps emotion words to mouth colors. Lookups are
// case-insensitive; unknown words fall back to neutral.
type Palette struct {
	colors map[string]Color
}

// DefaultPalette returns the built-in emotion color table.
func DefaultPalette() *Palette {
	return &Palette{colors: map[string]Color{
		"happy":     {R: 0, G: 255, B: 255},
		"sad":       {R: 255, G: 0, B: 0},
		"angry":     {R: 0, G: 255, B: 0},
		"surprised": {R: 255, G: 255, B: 0},
		"neutral":   {R: 0, G: 255, B: 0},
	}}
}

// Color returns the color for an emotion word.
func (p *Palette) Color(emotion string) Color {
	if c, ok := p.colors[strings.ToLower(strings.TrimSpace(emotion))]; ok {
		return c
	}
	return p.colors["neutral"]
}

// Emotions returns the known emotion words.
func (p *Palette) Emotions() []string {
	out := make([]string, 0, len(p.colors))
	for k := range p.colors {
		out = append(out, k)
	}
	return out
}

type paletteFile struct {
	Emotions map[string]struct {
		R uint8 `yaml:"r"`
		G uint8 `yaml:"g"`
		B uint8 `yaml:"b"`
	} `yaml:"emotions"`
}

// LoadPalette reads an emotion color table from a YAML file. Entries
// merge over the defaults, so a partial file overrides only the
// emotions it names.
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mouth: read palette: %w", err)
	}

	var file paletteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("mouth: parse palette: %w", err)
	}

	p := DefaultPalette()
	for name, c := range file.Emotions {
		p.colors[strings.ToLower(name)] = Color{R: c.R, G: c.G, B: c.B}
	}
	return p, nil
}
