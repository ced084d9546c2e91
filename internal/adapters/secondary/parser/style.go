package parser

import (
	"regexp"
	"strings"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

const (
	// styleScanLines is how many leading lines may carry a style marker
	styleScanLines = 3
	// dataScanLines is how many lines after the style line may carry a data marker
	dataScanLines = 2

	noLine = -1
)

var (
	styleMarker = regexp.MustCompile(`(?i)style:\s*(\w+)`)
	dataMarker  = regexp.MustCompile(`(?i)data:\s*(\w+)`)
)

type keywordFamily struct {
	style    entities.SlideStyle
	keywords []string
}

// styleKeywords are checked against the first line in this order; first match wins
var styleKeywords = []keywordFamily{
	{style: entities.StyleTitle, keywords: []string{"introduction", "overview", "agenda"}},
	{style: entities.StyleSection, keywords: []string{"summary", "conclusion", "key points"}},
	{style: entities.StyleData, keywords: []string{"statistics", "metrics", "numbers"}},
	{style: entities.StyleQuote, keywords: []string{"quote", "saying"}},
}

type subtypeFamily struct {
	subtype  entities.DataSubtype
	keywords []string
}

// subtypeKeywords are checked against the whole block in this order; first match wins
var subtypeKeywords = []subtypeFamily{
	{subtype: entities.SubtypeChart, keywords: []string{"chart", "graph"}},
	{subtype: entities.SubtypeComparison, keywords: []string{"compar", "versus", "vs"}},
	{subtype: entities.SubtypeStatistics, keywords: []string{"statistic", "metric", "%"}},
}

// ExtractStyle resolves a block's style. An explicit "Style:" marker in the
// first three lines wins and its index is returned; otherwise the style is
// inferred from keywords and the index is -1.
func ExtractStyle(lines []string) (entities.SlideStyle, int) {
	if len(lines) == 0 {
		return entities.DefaultStyle, noLine
	}

	if style, idx, ok := explicitStyle(lines); ok {
		return style, idx
	}

	return inferStyle(lines), noLine
}

func explicitStyle(lines []string) (entities.SlideStyle, int, bool) {
	for i := 0; i < len(lines) && i < styleScanLines; i++ {
		m := styleMarker.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		if style, ok := entities.ParseSlideStyle(m[1]); ok {
			return style, i, true
		}
	}
	return "", noLine, false
}

func inferStyle(lines []string) entities.SlideStyle {
	first := strings.ToLower(lines[0])
	for _, family := range styleKeywords {
		if containsAny(first, family.keywords) {
			return family.style
		}
	}

	for _, line := range lines {
		if strings.Contains(line, `"`) {
			return entities.StyleQuote
		}
	}

	return entities.DefaultStyle
}

// ExtractDataSubtype resolves the subtype of a data block. An explicit
// "Data:" marker within two lines after the style line (or in the first two
// lines when there is no style line) wins and its index is returned; otherwise
// the subtype is inferred from the block text and the index is -1.
func ExtractDataSubtype(lines []string, styleLine int) (entities.DataSubtype, int) {
	start := 0
	if styleLine > noLine {
		start = styleLine + 1
	}

	for i := start; i < len(lines) && i < start+dataScanLines; i++ {
		m := dataMarker.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		if subtype, ok := entities.ParseDataSubtype(m[1]); ok {
			return subtype, i
		}
	}

	return inferDataSubtype(lines), noLine
}

func inferDataSubtype(lines []string) entities.DataSubtype {
	text := strings.ToLower(strings.Join(lines, " "))
	for _, family := range subtypeKeywords {
		if containsAny(text, family.keywords) {
			return family.subtype
		}
	}
	return entities.DefaultDataSubtype
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
