package ports

import (
	"context"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// TextGenerator calls an upstream text-generation service
type TextGenerator interface {
	// Generate sends the system instruction and conversation and returns the generated text.
	// Failures are reported as *entities.GenerationError.
	Generate(ctx context.Context, system string, messages []entities.Message) (string, error)

	// Name identifies the provider in logs
	Name() string
}
