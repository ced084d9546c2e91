package entities

import (
	"fmt"
)

// StyleColors is the background/text token pair a style renders with
type StyleColors struct {
	Background string `json:"bg" yaml:"bg" toml:"bg"`
	Text       string `json:"text" yaml:"text" toml:"text"`
}

// Palette is an immutable style -> colour lookup table
type Palette struct {
	colors map[SlideStyle]StyleColors
}

// NewPalette copies table into a Palette. Every style must be present.
func NewPalette(table map[SlideStyle]StyleColors) (Palette, error) {
	colors := make(map[SlideStyle]StyleColors, len(AllStyles))
	for _, style := range AllStyles {
		c, ok := table[style]
		if !ok {
			return Palette{}, fmt.Errorf("palette is missing style %q", style)
		}
		colors[style] = c
	}
	return Palette{colors: colors}, nil
}

// DefaultPalette returns the standard gradient/text tokens per style
func DefaultPalette() Palette {
	return Palette{colors: map[SlideStyle]StyleColors{
		StyleTitle:   {Background: "from-blue-600 to-blue-700", Text: "text-white"},
		StyleSection: {Background: "from-slate-800 to-slate-900", Text: "text-white"},
		StyleContent: {Background: "from-white to-slate-50", Text: "text-slate-800"},
		StyleQuote:   {Background: "from-slate-100 to-slate-200", Text: "text-slate-800"},
		StyleData:    {Background: "from-slate-50 to-white", Text: "text-slate-800"},
	}}
}

// Colors returns the colour pair for style
func (p Palette) Colors(style SlideStyle) (StyleColors, error) {
	if p.colors == nil {
		return StyleColors{}, fmt.Errorf("%w: palette is not initialised", ErrInvalidSlide)
	}
	c, ok := p.colors[style]
	if !ok {
		return StyleColors{}, fmt.Errorf("%w: no colours for style %q", ErrInvalidSlide, style)
	}
	return c, nil
}

// IsZero reports whether p was never initialised
func (p Palette) IsZero() bool {
	return p.colors == nil
}

// Table returns a copy of the underlying table
func (p Palette) Table() map[SlideStyle]StyleColors {
	out := make(map[SlideStyle]StyleColors, len(p.colors))
	for k, v := range p.colors {
		out[k] = v
	}
	return out
}
