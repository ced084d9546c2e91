package parser

import "regexp"

// MarkerRule is one (pattern, replacement) rewrite of a title line.
// Rules run in order; once a Final rule matches, the remaining rules are skipped.
type MarkerRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
	Final       bool
}

// TitleRules strip ordinals and markers from the first line of a slide block.
// The roman ordinal goes first so "II. Title: Plan" yields "Plan"; the marker
// rules are alternatives and only the first matching one applies.
var TitleRules = []MarkerRule{
	{Name: "roman-ordinal", Pattern: regexp.MustCompile(`^[IVXLCDM]+\.\s+`)},
	{Name: "title-marker", Pattern: regexp.MustCompile(`(?i)^title:`), Final: true},
	{Name: "section-marker", Pattern: regexp.MustCompile(`(?i)^section:`), Final: true},
	{Name: "slide-marker", Pattern: regexp.MustCompile(`(?i)^slide\s*\d*:?`), Final: true},
}

// FallbackTitleRules apply to the first line when the whole document is treated as one slide
var FallbackTitleRules = []MarkerRule{
	{Name: "title-marker", Pattern: regexp.MustCompile(`(?i)^title:`), Final: true},
	{Name: "section-marker", Pattern: regexp.MustCompile(`(?i)^section:`), Final: true},
	{Name: "slide-marker", Pattern: regexp.MustCompile(`(?i)^slide:?`), Final: true},
}

const (
	// FallbackTitle is used when the whole-document title strips to nothing
	FallbackTitle = "Overview"

	numberedTitleFormat = "Slide %d"
)

// ApplyRules runs rules over line in order and trims the result
func ApplyRules(line string, rules []MarkerRule) string {
	out := line
	for _, rule := range rules {
		if !rule.Pattern.MatchString(out) {
			continue
		}
		out = rule.Pattern.ReplaceAllLiteralString(out, rule.Replacement)
		if rule.Final {
			break
		}
	}
	return trimSpace(out)
}

// StripTitle applies TitleRules to a title line
func StripTitle(line string) string {
	return ApplyRules(line, TitleRules)
}
