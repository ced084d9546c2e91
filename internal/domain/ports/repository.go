package ports

import (
	"context"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// DeckStore holds the current deck. A new deck replaces the previous one wholesale.
type DeckStore interface {
	// Current returns the current deck or entities.ErrNoDeck
	Current(ctx context.Context) (*entities.Deck, error)

	// Replace swaps in deck as the current deck
	Replace(ctx context.Context, deck *entities.Deck) error
}

// PromptCatalog provides the canned prompts offered to users
type PromptCatalog interface {
	List(ctx context.Context) ([]entities.PromptTemplate, error)
}
