package entities

import (
	"errors"
	"fmt"
	"time"
)

// DeckSource records where a deck's raw text came from
type DeckSource string

const (
	SourceGenerated DeckSource = "generated"
	SourceText      DeckSource = "text"
	SourceFile      DeckSource = "file"
)

// Deck is the ordered output of one parse call
type Deck struct {
	// ID is a unique identifier for the deck
	ID string `json:"id"`

	// Prompt is the user prompt the deck was generated from, if any
	Prompt string `json:"prompt,omitempty"`

	// Source describes where the raw text came from
	Source DeckSource `json:"source"`

	// RawText is the generated text the slides were parsed from
	RawText string `json:"-"`

	// GeneratedAt is when the deck was parsed
	GeneratedAt time.Time `json:"generatedAt"`

	// Slides contains all slides in source order
	Slides []Slide `json:"slides"`
}

// Validate ensures the deck has at least one well-formed slide
func (d *Deck) Validate() error {
	if len(d.Slides) == 0 {
		return errors.New("deck must have at least one slide")
	}

	for i, slide := range d.Slides {
		if slide.IsZero() {
			return fmt.Errorf("slide %d: %w: record was not built", i+1, ErrInvalidSlide)
		}
	}

	return nil
}

// SlideCount returns the total number of slides
func (d *Deck) SlideCount() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}

// Title returns the first slide title, used as the deck name
func (d *Deck) Title() string {
	if len(d.Slides) == 0 {
		return "Untitled Deck"
	}
	return d.Slides[0].Title()
}

// GetSlide returns a slide by its 0-based index
func (d *Deck) GetSlide(index int) (Slide, error) {
	if index < 0 || index >= len(d.Slides) {
		return Slide{}, fmt.Errorf("slide index %d out of range (0-%d)", index, len(d.Slides)-1)
	}
	return d.Slides[index], nil
}

// StyleCounts tallies slides per style
func (d *Deck) StyleCounts() map[SlideStyle]int {
	counts := make(map[SlideStyle]int, len(AllStyles))
	for _, slide := range d.Slides {
		counts[slide.Style()]++
	}
	return counts
}
