package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SlideStyle is the layout category assigned to a slide
type SlideStyle string

const (
	StyleTitle   SlideStyle = "title"
	StyleSection SlideStyle = "section"
	StyleContent SlideStyle = "content"
	StyleQuote   SlideStyle = "quote"
	StyleData    SlideStyle = "data"

	// DefaultStyle is used when no style can be determined
	DefaultStyle = StyleContent
)

// AllStyles lists every slide style in declaration order
var AllStyles = []SlideStyle{StyleTitle, StyleSection, StyleContent, StyleQuote, StyleData}

// ParseSlideStyle matches a style name case-insensitively
func ParseSlideStyle(s string) (SlideStyle, bool) {
	style := SlideStyle(strings.ToLower(strings.TrimSpace(s)))
	if style.Valid() {
		return style, true
	}
	return "", false
}

// Valid reports whether s is one of the known styles
func (s SlideStyle) Valid() bool {
	switch s {
	case StyleTitle, StyleSection, StyleContent, StyleQuote, StyleData:
		return true
	default:
		return false
	}
}

func (s SlideStyle) String() string {
	return string(s)
}

// DataSubtype refines the data style
type DataSubtype string

const (
	SubtypeChart      DataSubtype = "chart"
	SubtypeComparison DataSubtype = "comparison"
	SubtypeStatistics DataSubtype = "statistics"

	// DefaultDataSubtype is used for data slides without a marker or inferable keyword
	DefaultDataSubtype = SubtypeStatistics
)

// ParseDataSubtype matches a data subtype name case-insensitively
func ParseDataSubtype(s string) (DataSubtype, bool) {
	subtype := DataSubtype(strings.ToLower(strings.TrimSpace(s)))
	if subtype.Valid() {
		return subtype, true
	}
	return "", false
}

// Valid reports whether d is one of the known subtypes
func (d DataSubtype) Valid() bool {
	switch d {
	case SubtypeChart, SubtypeComparison, SubtypeStatistics:
		return true
	default:
		return false
	}
}

func (d DataSubtype) String() string {
	return string(d)
}

// PlaceholderContent is the single bullet used when no content can be derived
const PlaceholderContent = "Key points to be discussed"

// SlideSpec carries the parsed fields a Slide is built from
type SlideSpec struct {
	Title       string
	Content     []string
	Style       SlideStyle
	DataSubtype DataSubtype
}

// Slide is one parsed slide record. It is immutable once built by NewSlide.
type Slide struct {
	title       string
	content     []string
	style       SlideStyle
	dataSubtype DataSubtype
	colors      StyleColors
}

// NewSlide validates spec and stamps it with the palette colours for its style
func NewSlide(spec SlideSpec, palette Palette) (Slide, error) {
	title := strings.TrimSpace(spec.Title)
	if title == "" {
		return Slide{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidSlide)
	}

	if !spec.Style.Valid() {
		return Slide{}, fmt.Errorf("%w: unknown style %q", ErrInvalidSlide, spec.Style)
	}

	if spec.Style == StyleData {
		if !spec.DataSubtype.Valid() {
			return Slide{}, fmt.Errorf("%w: data slide needs a valid data subtype, got %q", ErrInvalidSlide, spec.DataSubtype)
		}
	} else if spec.DataSubtype != "" {
		return Slide{}, fmt.Errorf("%w: data subtype %q set on %s slide", ErrInvalidSlide, spec.DataSubtype, spec.Style)
	}

	content := make([]string, 0, len(spec.Content))
	for _, line := range spec.Content {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			content = append(content, trimmed)
		}
	}
	if len(content) == 0 {
		return Slide{}, fmt.Errorf("%w: content cannot be empty", ErrInvalidSlide)
	}

	colors, err := palette.Colors(spec.Style)
	if err != nil {
		return Slide{}, err
	}

	return Slide{
		title:       title,
		content:     content,
		style:       spec.Style,
		dataSubtype: spec.DataSubtype,
		colors:      colors,
	}, nil
}

// Title returns the slide title
func (s Slide) Title() string {
	return s.title
}

// Content returns a copy of the slide's bullet lines
func (s Slide) Content() []string {
	out := make([]string, len(s.content))
	copy(out, s.content)
	return out
}

// ContentLen returns the number of bullet lines
func (s Slide) ContentLen() int {
	return len(s.content)
}

// Style returns the slide style
func (s Slide) Style() SlideStyle {
	return s.style
}

// DataSubtype returns the data subtype; ok is false unless the style is data
func (s Slide) DataSubtype() (DataSubtype, bool) {
	return s.dataSubtype, s.style == StyleData
}

// Background returns the background token resolved from the palette
func (s Slide) Background() string {
	return s.colors.Background
}

// TextColor returns the text colour token resolved from the palette
func (s Slide) TextColor() string {
	return s.colors.Text
}

// IsZero reports whether s was never built
func (s Slide) IsZero() bool {
	return s.title == "" && len(s.content) == 0
}

// slideJSON is the wire shape of a slide
type slideJSON struct {
	Title     string      `json:"title"`
	Content   []string    `json:"content"`
	Style     SlideStyle  `json:"style"`
	DataType  DataSubtype `json:"dataType,omitempty"`
	BgColor   string      `json:"bgColor"`
	TextColor string      `json:"textColor"`
}

// MarshalJSON implements json.Marshaler
func (s Slide) MarshalJSON() ([]byte, error) {
	return json.Marshal(slideJSON{
		Title:     s.title,
		Content:   s.content,
		Style:     s.style,
		DataType:  s.dataSubtype,
		BgColor:   s.colors.Background,
		TextColor: s.colors.Text,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The record is re-validated and
// the colours are taken as sent, since they were resolved when it was built.
func (s *Slide) UnmarshalJSON(data []byte) error {
	var raw slideJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	palette := DefaultPalette()
	slide, err := NewSlide(SlideSpec{
		Title:       raw.Title,
		Content:     raw.Content,
		Style:       raw.Style,
		DataSubtype: raw.DataType,
	}, palette)
	if err != nil {
		return err
	}

	if raw.BgColor != "" || raw.TextColor != "" {
		slide.colors = StyleColors{Background: raw.BgColor, Text: raw.TextColor}
	}

	*s = slide
	return nil
}
