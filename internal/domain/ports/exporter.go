package ports

import (
	"context"
	"io"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// DeckRenderer writes a deck in one output format
type DeckRenderer interface {
	Render(ctx context.Context, deck *entities.Deck, w io.Writer) error
	ContentType() string
	Extension() string
}

// DeckExporter renders decks in any registered format
type DeckExporter interface {
	// Export writes deck in the named format to w
	Export(ctx context.Context, deck *entities.Deck, format string, w io.Writer) error

	// ContentType returns the MIME type for the named format
	ContentType(format string) (string, error)

	// FileName returns a download file name for deck in the named format
	FileName(deck *entities.Deck, format string) (string, error)

	// SupportedFormats returns the registered format names
	SupportedFormats() []string
}
