package parser

import (
	"fmt"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// Parser turns generated slide text into slide records. It holds no mutable
// state and is safe for concurrent use.
type Parser struct {
	palette       entities.Palette
	titleRules    []MarkerRule
	fallbackRules []MarkerRule
}

// Option configures a Parser
type Option func(*Parser)

// WithTitleRules replaces the rules applied to slide title lines
func WithTitleRules(rules []MarkerRule) Option {
	return func(p *Parser) {
		p.titleRules = rules
	}
}

// WithFallbackTitleRules replaces the rules applied to the whole-document title line
func WithFallbackTitleRules(rules []MarkerRule) Option {
	return func(p *Parser) {
		p.fallbackRules = rules
	}
}

// New creates a parser that stamps slides with colours from palette.
// A zero palette is replaced by entities.DefaultPalette.
func New(palette entities.Palette, opts ...Option) *Parser {
	if palette.IsZero() {
		palette = entities.DefaultPalette()
	}

	p := &Parser{
		palette:       palette,
		titleRules:    TitleRules,
		fallbackRules: FallbackTitleRules,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseSlides parses raw with the default palette
func ParseSlides(raw string) ([]entities.Slide, error) {
	return New(entities.DefaultPalette()).Parse(raw)
}

// SlideReport records how one slide was derived
type SlideReport struct {
	Slide entities.Slide
	// Block is the source text block, or the whole document on the fallback path
	Block string
	// StyleLine and DataLine are the marker line indices, -1 when inferred
	StyleLine int
	DataLine  int
	Tier      ContentTier
	// Fallback is true when no block qualified and the whole document became one slide
	Fallback bool
}

// Parse converts raw generated text into slides in document order.
// It fails only with *entities.NoContentError when the text has no non-blank lines.
func (p *Parser) Parse(raw string) ([]entities.Slide, error) {
	reports, err := p.Analyze(raw)
	if err != nil {
		return nil, err
	}

	slides := make([]entities.Slide, len(reports))
	for i, r := range reports {
		slides[i] = r.Slide
	}
	return slides, nil
}

// Analyze is Parse with per-slide derivation details
func (p *Parser) Analyze(raw string) ([]SlideReport, error) {
	text := Normalize(raw)

	blocks := Segment(text)
	if len(blocks) == 0 {
		report, err := p.parseDocument(text, len(raw))
		if err != nil {
			return nil, err
		}
		return []SlideReport{report}, nil
	}

	reports := make([]SlideReport, 0, len(blocks))
	for i, block := range blocks {
		report, err := p.parseBlock(block, i)
		if err != nil {
			return nil, fmt.Errorf("building slide %d: %w", i+1, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (p *Parser) parseBlock(block string, index int) (SlideReport, error) {
	lines := Lines(block)
	if len(lines) == 0 {
		return SlideReport{}, fmt.Errorf("%w: block %d has no lines", entities.ErrInvalidSlide, index+1)
	}

	title := ApplyRules(lines[0], p.titleRules)
	if title == "" {
		title = fmt.Sprintf(numberedTitleFormat, index+1)
	}

	style, styleLine := ExtractStyle(lines)

	var subtype entities.DataSubtype
	dataLine := noLine
	if style == entities.StyleData {
		subtype, dataLine = ExtractDataSubtype(lines, styleLine)
	}

	skip := metadataLines(0, styleLine, dataLine)
	content, tier := ExtractContentTier(lines, skip)

	slide, err := entities.NewSlide(entities.SlideSpec{
		Title:       title,
		Content:     content,
		Style:       style,
		DataSubtype: subtype,
	}, p.palette)
	if err != nil {
		return SlideReport{}, err
	}

	return SlideReport{
		Slide:     slide,
		Block:     block,
		StyleLine: styleLine,
		DataLine:  dataLine,
		Tier:      tier,
	}, nil
}

// parseDocument treats the whole text as a single content slide
func (p *Parser) parseDocument(text string, inputLength int) (SlideReport, error) {
	lines := Lines(text)
	if len(lines) == 0 {
		return SlideReport{}, &entities.NoContentError{InputLength: inputLength}
	}

	title := ApplyRules(lines[0], p.fallbackRules)
	if title == "" {
		title = FallbackTitle
	}

	content, tier := ExtractContentTier(lines, metadataLines(0))

	slide, err := entities.NewSlide(entities.SlideSpec{
		Title:   title,
		Content: content,
		Style:   entities.StyleContent,
	}, p.palette)
	if err != nil {
		return SlideReport{}, err
	}

	return SlideReport{
		Slide:     slide,
		Block:     text,
		StyleLine: noLine,
		DataLine:  noLine,
		Tier:      tier,
		Fallback:  true,
	}, nil
}

func metadataLines(indices ...int) map[int]bool {
	skip := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i > noLine {
			skip[i] = true
		}
	}
	return skip
}
