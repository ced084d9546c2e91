package generator

import (
	"context"
	"strings"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// sampleDeck is returned by the offline generator
const sampleDeck = `Title: Transforming Ideas Into Reality
Style: title
• Your journey starts here
• Innovation meets execution
• Building the future together

Title: Market Overview
Style: data
Data: chart
• Market size: $50B by 2025
• 45% YoY growth rate
• Key segments: Enterprise (60%), SMB (30%), Consumer (10%)
• Emerging trends in AI and automation

Title: Strategic Approach
Style: content
• Implement data-driven decision making
• Foster cross-functional collaboration
• Leverage cutting-edge technologies
• Maintain agile methodology`

const maxMockTitle = 60

// MockGenerator returns a fixed deck without calling any service
type MockGenerator struct {
	Text string
}

// NewMockGenerator creates an offline generator returning the sample deck
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Text: sampleDeck}
}

// Name returns the provider identifier
func (g *MockGenerator) Name() string {
	return entities.ProviderMock
}

// Generate returns the configured text, prefixed with a section slide naming the prompt
func (g *MockGenerator) Generate(ctx context.Context, _ string, messages []entities.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prompt := strings.TrimSpace(entities.Conversation(messages).LastUserPrompt())
	if prompt == "" {
		return g.Text, nil
	}

	if r := []rune(prompt); len(r) > maxMockTitle {
		prompt = string(r[:maxMockTitle])
	}
	return "Title: " + firstLine(prompt) + "\nStyle: section\n• Generated offline\n\n" + g.Text, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
