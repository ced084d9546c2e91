package export

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// inlineMarkdown renders emphasis, code spans, links and strikethrough inside a bullet
var inlineMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Linkify,
	),
)

// createInlineSanitizer allows only the inline elements a bullet can produce
func createInlineSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("strong", "b", "em", "i", "del", "s", "code", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return p
}

var inlineSanitizer = createInlineSanitizer()

var (
	orderedMarker = regexp.MustCompile(`^(\d+)([.)]\s)`)
	blockMarker   = regexp.MustCompile(`^([#>+*-]+\s)`)
)

// escapeBlockMarkers keeps a bullet that looks like a list item, heading or
// quote rendering as plain inline text
func escapeBlockMarkers(text string) string {
	text = orderedMarker.ReplaceAllString(text, `$1\$2`)
	return blockMarker.ReplaceAllString(text, `\$1`)
}

// InlineHTML converts one line of bullet text into sanitized inline HTML
func InlineHTML(text string) template.HTML {
	var buf bytes.Buffer
	if err := inlineMarkdown.Convert([]byte(escapeBlockMarkers(text)), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text)) // #nosec G203 - escaped above
	}

	rendered := strings.TrimSpace(buf.String())
	rendered = strings.TrimPrefix(rendered, "<p>")
	rendered = strings.TrimSuffix(rendered, "</p>")

	return template.HTML(inlineSanitizer.Sanitize(rendered)) // #nosec G203 - sanitized by bluemonday
}
