package export

import "github.com/fredcamaral/slidegen/internal/domain/entities"

// accentColor is the highlight used for bars, bullets and quote marks
const accentColor = "3B82F6"

// colorScheme holds hex colours (without '#') for one slide style
type colorScheme struct {
	Background string
	Title      string
	Text       string
}

var colorSchemes = map[entities.SlideStyle]colorScheme{
	entities.StyleTitle:   {Background: "2563EB", Title: "FFFFFF", Text: "FFFFFF"},
	entities.StyleSection: {Background: "1E293B", Title: "FFFFFF", Text: "FFFFFF"},
	entities.StyleContent: {Background: "FFFFFF", Title: "1E293B", Text: "334155"},
	entities.StyleQuote:   {Background: "F1F5F9", Title: "1E293B", Text: "334155"},
	entities.StyleData:    {Background: "F8FAFC", Title: "1E293B", Text: "334155"},
}

// schemeFor returns the scheme for style, falling back to content
func schemeFor(style entities.SlideStyle) colorScheme {
	if scheme, ok := colorSchemes[style]; ok {
		return scheme
	}
	return colorSchemes[entities.StyleContent]
}

// splitColumns divides data points into a left column of ceil(n/2) and a right column of the rest
func splitColumns(points []string) (left, right []string) {
	mid := (len(points) + 1) / 2
	return points[:mid], points[mid:]
}
