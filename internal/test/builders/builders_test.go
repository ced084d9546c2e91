package builders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

func TestDeckBuilder(t *testing.T) {
	t.Run("builds deck with defaults", func(t *testing.T) {
		deck := NewDeckBuilder().Build()

		assert.Equal(t, "deck-test", deck.ID)
		assert.Equal(t, entities.SourceText, deck.Source)
		assert.Empty(t, deck.Slides)
		assert.False(t, deck.GeneratedAt.IsZero())
	})

	t.Run("builds deck with custom values", func(t *testing.T) {
		deck := NewDeckBuilder().
			WithID("abc").
			WithPrompt("Launch plan").
			WithSource(entities.SourceGenerated).
			WithSlideCount(3).
			Build()

		assert.Equal(t, "abc", deck.ID)
		assert.Equal(t, "Launch plan", deck.Prompt)
		require.Len(t, deck.Slides, 3)
		assert.Equal(t, "Slide 3", deck.Slides[2].Title())
		assert.NoError(t, deck.Validate())
	})

	t.Run("build returns independent decks", func(t *testing.T) {
		b := NewDeckBuilder().WithSlideCount(1)
		first := b.Build()
		second := b.WithSlideCount(1).Build()

		assert.Len(t, first.Slides, 1)
		assert.Len(t, second.Slides, 2)
	})

	t.Run("helpers", func(t *testing.T) {
		assert.Len(t, MinimalDeck().Slides, 1)
		assert.Len(t, LargeDeck().Slides, 50)

		counts := AllStylesDeck().StyleCounts()
		for _, style := range entities.AllStyles {
			assert.Equal(t, 1, counts[style], style)
		}
	})
}

func TestSlideBuilder(t *testing.T) {
	t.Run("data slide carries subtype", func(t *testing.T) {
		slide := NewSlideBuilder().WithData(entities.SubtypeComparison).Build()

		subtype, ok := slide.DataSubtype()
		assert.True(t, ok)
		assert.Equal(t, entities.SubtypeComparison, subtype)
	})

	t.Run("switching away from data clears subtype", func(t *testing.T) {
		slide := NewSlideBuilder().WithStyle(entities.StyleData).WithStyle(entities.StyleQuote).Build()

		_, ok := slide.DataSubtype()
		assert.False(t, ok)
		assert.Equal(t, entities.StyleQuote, slide.Style())
	})

	t.Run("invalid slide panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewSlideBuilder().WithTitle("   ").Build()
		})
	})
}
