package builders

import (
	"fmt"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// DeckBuilder helps build Deck entities for testing
type DeckBuilder struct {
	deck   entities.Deck
	slides []*SlideBuilder
}

// NewDeckBuilder creates a new deck builder with sensible defaults
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{
		deck: entities.Deck{
			ID:          "deck-test",
			Source:      entities.SourceText,
			GeneratedAt: time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC),
		},
	}
}

// WithID sets the deck ID
func (b *DeckBuilder) WithID(id string) *DeckBuilder {
	b.deck.ID = id
	return b
}

// WithPrompt sets the prompt the deck was generated from
func (b *DeckBuilder) WithPrompt(prompt string) *DeckBuilder {
	b.deck.Prompt = prompt
	return b
}

// WithSource sets the deck source
func (b *DeckBuilder) WithSource(source entities.DeckSource) *DeckBuilder {
	b.deck.Source = source
	return b
}

// WithGeneratedAt sets the generation time
func (b *DeckBuilder) WithGeneratedAt(at time.Time) *DeckBuilder {
	b.deck.GeneratedAt = at
	return b
}

// WithSlide appends a slide
func (b *DeckBuilder) WithSlide(slide *SlideBuilder) *DeckBuilder {
	b.slides = append(b.slides, slide)
	return b
}

// WithSlideCount appends count content slides titled "Slide N"
func (b *DeckBuilder) WithSlideCount(count int) *DeckBuilder {
	start := len(b.slides)
	for i := 1; i <= count; i++ {
		b.slides = append(b.slides, NewSlideBuilder().WithTitle(fmt.Sprintf("Slide %d", start+i)))
	}
	return b
}

// Build creates the final Deck. It panics if a slide breaks the record invariants.
func (b *DeckBuilder) Build() *entities.Deck {
	deck := b.deck
	deck.Slides = make([]entities.Slide, 0, len(b.slides))
	for _, sb := range b.slides {
		deck.Slides = append(deck.Slides, sb.Build())
	}
	return &deck
}

// SlideBuilder helps build Slide records for testing
type SlideBuilder struct {
	spec    entities.SlideSpec
	palette entities.Palette
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		spec: entities.SlideSpec{
			Title:   "Test Slide",
			Content: []string{"Test content"},
			Style:   entities.StyleContent,
		},
		palette: entities.DefaultPalette(),
	}
}

// WithTitle sets the slide title
func (b *SlideBuilder) WithTitle(title string) *SlideBuilder {
	b.spec.Title = title
	return b
}

// WithContent replaces the content lines
func (b *SlideBuilder) WithContent(lines ...string) *SlideBuilder {
	b.spec.Content = append([]string(nil), lines...)
	return b
}

// WithStyle sets the style. Data slides default to the statistics subtype.
func (b *SlideBuilder) WithStyle(style entities.SlideStyle) *SlideBuilder {
	b.spec.Style = style
	if style == entities.StyleData && b.spec.DataSubtype == "" {
		b.spec.DataSubtype = entities.DefaultDataSubtype
	}
	if style != entities.StyleData {
		b.spec.DataSubtype = ""
	}
	return b
}

// WithData makes the slide a data slide of the given subtype
func (b *SlideBuilder) WithData(subtype entities.DataSubtype) *SlideBuilder {
	b.spec.Style = entities.StyleData
	b.spec.DataSubtype = subtype
	return b
}

// WithPalette sets the palette colours are resolved from
func (b *SlideBuilder) WithPalette(palette entities.Palette) *SlideBuilder {
	b.palette = palette
	return b
}

// Build creates the slide. It panics on invalid input since builders are for fixtures.
func (b *SlideBuilder) Build() entities.Slide {
	slide, err := entities.NewSlide(b.spec, b.palette)
	if err != nil {
		panic(fmt.Sprintf("building test slide: %v", err))
	}
	return slide
}

// Common decks for testing

// MinimalDeck creates a deck with a single content slide
func MinimalDeck() *entities.Deck {
	return NewDeckBuilder().WithSlideCount(1).Build()
}

// LargeDeck creates a deck with many slides for performance tests
func LargeDeck() *entities.Deck {
	return NewDeckBuilder().WithSlideCount(50).Build()
}

// AllStylesDeck creates a deck with one slide per style
func AllStylesDeck() *entities.Deck {
	return NewDeckBuilder().
		WithPrompt("Quarterly business review").
		WithSlide(NewSlideBuilder().WithTitle("Transforming Ideas").WithStyle(entities.StyleTitle).
			WithContent("Your journey starts here", "Innovation meets execution")).
		WithSlide(NewSlideBuilder().WithTitle("Key Points").WithStyle(entities.StyleSection).
			WithContent("Where we stand")).
		WithSlide(NewSlideBuilder().WithTitle("Strategic Approach").
			WithContent("Implement **data-driven** decisions", "Foster collaboration", "Stay agile")).
		WithSlide(NewSlideBuilder().WithTitle("Words to Live By").WithStyle(entities.StyleQuote).
			WithContent(`"Simplicity is the ultimate sophistication"`)).
		WithSlide(NewSlideBuilder().WithTitle("Market Overview").WithData(entities.SubtypeChart).
			WithContent("Market size: $50B by 2025", "45% YoY growth", "Enterprise 60%")).
		Build()
}
