package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// JSONRenderer writes the deck as an indented JSON document
type JSONRenderer struct{}

// NewJSONRenderer creates a new JSON renderer
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

type jsonDocument struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Prompt      string           `json:"prompt,omitempty"`
	Source      string           `json:"source,omitempty"`
	GeneratedAt time.Time        `json:"generatedAt"`
	SlideCount  int              `json:"slideCount"`
	Slides      []entities.Slide `json:"slides"`
}

// Render writes the deck to w
func (r *JSONRenderer) Render(_ context.Context, deck *entities.Deck, w io.Writer) error {
	doc := jsonDocument{
		ID:          deck.ID,
		Title:       deck.Title(),
		Prompt:      deck.Prompt,
		Source:      string(deck.Source),
		GeneratedAt: deck.GeneratedAt,
		SlideCount:  deck.SlideCount(),
		Slides:      deck.Slides,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encoding deck: %w", err)
	}
	return nil
}

// ContentType returns the MIME type for JSON exports
func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

// Extension returns the file extension for JSON exports
func (r *JSONRenderer) Extension() string {
	return ".json"
}
