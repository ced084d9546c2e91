package parser

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Bullet is the canonical bullet glyph recognised by the segmenter and content tiers
const Bullet = "•"

// mojibake repairs UTF-8 punctuation that was decoded as Windows-1252
var mojibake = strings.NewReplacer(
	"â€¢", Bullet,
	"â€˜", "'",
	"â€™", "'",
	"â€œ", "\"",
	"â€\u009d", "\"",
	"â€“", "-",
	"â€”", "-",
)

// punctuation folds typographic quotes and dashes onto their ASCII forms
var punctuation = runes.Map(func(r rune) rune {
	switch r {
	case '\u2018', '\u2019':
		return '\''
	case '\u201C', '\u201D':
		return '"'
	case '\u2022':
		return '•'
	case '\u2013', '\u2014':
		return '-'
	default:
		return r
	}
})

// Normalize repairs mojibake punctuation, canonicalises quotes, bullets, dashes
// and line endings, then trims the whole text including any byte order mark.
// It is total and idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	repaired := mojibake.Replace(raw)
	out, _, err := transform.String(punctuation, repaired)
	if err != nil {
		// runes.Map never reports an error for complete input
		out = repaired
	}

	// "\r\r\n" collapses to "\r\n" on the first pass, so repeat until stable
	for strings.Contains(out, "\r\n") {
		out = strings.ReplaceAll(out, "\r\n", "\n")
	}

	return trimSpace(out)
}
