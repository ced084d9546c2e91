package ports

import (
	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// SlideParser converts generated slide text into ordered slide records.
// Implementations are pure and safe for concurrent use.
type SlideParser interface {
	// Parse returns at least one slide or an error wrapping entities.ErrNoContent
	Parse(raw string) ([]entities.Slide, error)
}
