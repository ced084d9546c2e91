package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// ContentTier identifies the strategy that produced a slide's content
type ContentTier int

const (
	// TierBullets collects explicitly marked bullet, numbered and lettered lines
	TierBullets ContentTier = iota + 1
	// TierProse splits the remaining prose into sentences
	TierProse
	// TierPlaceholder emits the single placeholder line
	TierPlaceholder
)

// String returns the tier name
func (t ContentTier) String() string {
	switch t {
	case TierBullets:
		return "bullets"
	case TierProse:
		return "prose"
	case TierPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// TierResult is the outcome of one content tier. Matched is false when the
// tier found nothing usable and the next tier should run.
type TierResult struct {
	Lines   []string
	Matched bool
}

func matched(lines []string) TierResult {
	return TierResult{Lines: lines, Matched: len(lines) > 0}
}

var (
	numberedItem = regexp.MustCompile(`^\d+\.\s+`)
	dashedItem   = regexp.MustCompile(`^[-*]\s+`)
	letteredItem = regexp.MustCompile(`^[a-zA-Z]\)\s+`)

	// listMarkers are stripped in this order
	listMarkers = []*regexp.Regexp{
		regexp.MustCompile(`^[-•*]\s+`),
		numberedItem,
		letteredItem,
	}

	metadataMarkers = []string{"title:", "style:", "data:"}
)

type contentTier struct {
	tier ContentTier
	run  func(lines []string, skip map[int]bool) TierResult
}

var contentTiers = []contentTier{
	{tier: TierBullets, run: BulletTier},
	{tier: TierProse, run: ProseTier},
	{tier: TierPlaceholder, run: func([]string, map[int]bool) TierResult { return PlaceholderTier() }},
}

// ExtractContent returns the content lines of a block, skipping the line
// indices in skip. The result is never empty.
func ExtractContent(lines []string, skip map[int]bool) []string {
	content, _ := ExtractContentTier(lines, skip)
	return content
}

// ExtractContentTier is ExtractContent that also reports which tier matched
func ExtractContentTier(lines []string, skip map[int]bool) ([]string, ContentTier) {
	for _, t := range contentTiers {
		if res := t.run(lines, skip); res.Matched {
			return res.Lines, t.tier
		}
	}
	return []string{entities.PlaceholderContent}, TierPlaceholder
}

// BulletTier collects lines that start with a bullet glyph or a numbered,
// dashed or lettered list marker, with the marker removed. A glyph in the
// middle of a line does not make it a list item.
func BulletTier(lines []string, skip map[int]bool) TierResult {
	var out []string
	for i, line := range lines {
		if skip[i] || !isListItem(line) {
			continue
		}
		if item := stripListMarkers(line); item != "" {
			out = append(out, item)
		}
	}
	return matched(out)
}

// ProseTier joins the non-metadata lines into a paragraph and splits it into
// capitalised sentences.
func ProseTier(lines []string, skip map[int]bool) TierResult {
	var parts []string
	for i, line := range lines {
		if skip[i] || hasMetadataMarker(line) {
			continue
		}
		parts = append(parts, line)
	}
	if len(parts) == 0 {
		return TierResult{}
	}

	var out []string
	for _, sentence := range SplitSentences(strings.Join(parts, " ")) {
		if item := stripListMarkers(sentence); item != "" {
			out = append(out, capitalize(item))
		}
	}
	return matched(out)
}

// PlaceholderTier always matches with the single placeholder line
func PlaceholderTier() TierResult {
	return TierResult{Lines: []string{entities.PlaceholderContent}, Matched: true}
}

// SplitSentences splits text after '.', '!' or '?' when followed by
// whitespace or the end of text. The terminator is dropped and fragments are trimmed.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) {
			following, _ := utf8.DecodeRuneInString(text[next:])
			if !unicode.IsSpace(following) {
				continue
			}
		}
		if s := trimSpace(text[start:i]); s != "" {
			sentences = append(sentences, s)
		}
		start = next
	}
	if s := trimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isListItem(line string) bool {
	return strings.HasPrefix(line, Bullet) ||
		numberedItem.MatchString(line) ||
		dashedItem.MatchString(line) ||
		letteredItem.MatchString(line)
}

func stripListMarkers(s string) string {
	for _, marker := range listMarkers {
		s = marker.ReplaceAllLiteralString(s, "")
	}
	return trimSpace(s)
}

func hasMetadataMarker(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range metadataMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	// a Caser holds state, so each call gets its own
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}
