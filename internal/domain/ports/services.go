package ports

import (
	"context"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// DeckService defines the main service interface for decks
type DeckService interface {
	// Chat forwards the conversation upstream and returns the raw generated text
	Chat(ctx context.Context, messages entities.Conversation) (string, error)

	// Generate produces, parses and stores a new deck from the conversation
	Generate(ctx context.Context, messages entities.Conversation) (*entities.Deck, error)

	// ParseText parses and stores a deck from already generated text
	ParseText(ctx context.Context, text string, source entities.DeckSource) (*entities.Deck, error)

	// Current returns the current deck
	Current(ctx context.Context) (*entities.Deck, error)
}
