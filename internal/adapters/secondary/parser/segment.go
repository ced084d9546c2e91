package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// BlockSeparator divides slide blocks in generated text
const BlockSeparator = "\n\n"

var ordinalMarker = regexp.MustCompile(`(?i)^(section|slide)\s*\d*:?`)

// Blocks splits normalized text on blank lines and drops empty blocks
func Blocks(normalized string) []string {
	parts := strings.Split(normalized, BlockSeparator)
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimSpace(part) != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

// SlideLike reports whether a block has the shape of a slide. The title marker
// and the section/slide ordinal only count on the first non-blank line; the
// bullet glyph counts anywhere.
func SlideLike(block string) bool {
	lines := Lines(block)
	if len(lines) == 0 {
		return false
	}
	if strings.Contains(strings.ToLower(lines[0]), "title:") {
		return true
	}
	if ordinalMarker.MatchString(lines[0]) {
		return true
	}
	return strings.Contains(block, Bullet)
}

// Segment returns the slide-like blocks of normalized text in document order.
// An empty result means the caller must fall back to whole-document parsing.
func Segment(normalized string) []string {
	var slides []string
	for _, block := range Blocks(normalized) {
		if SlideLike(block) {
			slides = append(slides, block)
		}
	}
	return slides
}

// Lines splits a block into trimmed, non-blank lines
func Lines(block string) []string {
	raw := strings.Split(block, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := trimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// trimSpace trims Unicode whitespace plus the byte order mark, which
// strings.TrimSpace leaves in place.
func trimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
