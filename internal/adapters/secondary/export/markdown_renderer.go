package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// MarkdownRenderer implements export to markdown format
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a new markdown renderer
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

type markdownFrontMatter struct {
	Title     string `yaml:"title"`
	ID        string `yaml:"id,omitempty"`
	Prompt    string `yaml:"prompt,omitempty"`
	Generated string `yaml:"generated,omitempty"`
	Slides    int    `yaml:"slides"`
	Generator string `yaml:"generator"`
}

// Render exports the deck to markdown
func (r *MarkdownRenderer) Render(_ context.Context, deck *entities.Deck, w io.Writer) error {
	front := markdownFrontMatter{
		Title:     deck.Title(),
		ID:        deck.ID,
		Prompt:    deck.Prompt,
		Slides:    deck.SlideCount(),
		Generator: "slidegen",
	}
	if !deck.GeneratedAt.IsZero() {
		front.Generated = deck.GeneratedAt.UTC().Format(time.RFC3339)
	}

	header, err := yaml.Marshal(front)
	if err != nil {
		return fmt.Errorf("encoding front matter: %w", err)
	}

	var content strings.Builder
	content.WriteString("---\n")
	content.Write(header)
	content.WriteString("---\n\n")

	for i, slide := range deck.Slides {
		content.WriteString(styleComment(slide))
		content.WriteString("\n")
		fmt.Fprintf(&content, "## %s\n\n", slide.Title())

		for _, line := range slide.Content() {
			fmt.Fprintf(&content, "- %s\n", line)
		}

		if i < len(deck.Slides)-1 {
			content.WriteString("\n---\n\n")
		}
	}

	if _, err := io.WriteString(w, content.String()); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

// styleComment records the slide style where markdown has no native place for it
func styleComment(slide entities.Slide) string {
	if subtype, ok := slide.DataSubtype(); ok {
		return fmt.Sprintf("<!-- style: %s, data: %s -->", slide.Style(), subtype)
	}
	return fmt.Sprintf("<!-- style: %s -->", slide.Style())
}

// ContentType returns the MIME type for markdown exports
func (r *MarkdownRenderer) ContentType() string {
	return "text/markdown; charset=utf-8"
}

// Extension returns the file extension for markdown exports
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
