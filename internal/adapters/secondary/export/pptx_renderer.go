package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

const (
	// 16:9 slide size in EMU
	slideCX = 12192000
	slideCY = 6858000

	defaultPPTXAuthor  = "SlideGen AI"
	defaultPPTXCompany = "SlideGen"
	pptxSubject        = "AI Generated Presentation"
)

// PPTXRenderer writes decks as Office Open XML presentations
type PPTXRenderer struct {
	author  string
	company string
	now     func() time.Time
}

// NewPPTXRenderer creates a PowerPoint renderer. Empty author or company fall back to defaults.
func NewPPTXRenderer(author, company string) *PPTXRenderer {
	if author == "" {
		author = defaultPPTXAuthor
	}
	if company == "" {
		company = defaultPPTXCompany
	}
	return &PPTXRenderer{author: author, company: company, now: time.Now}
}

// Render writes the deck as a .pptx package to w
func (r *PPTXRenderer) Render(ctx context.Context, deck *entities.Deck, w io.Writer) error {
	created := deck.GeneratedAt
	if created.IsZero() {
		created = r.now()
	}

	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", pptxContentTypes(deck.SlideCount())},
		{"_rels/.rels", pptxRootRels()},
		{"docProps/core.xml", pptxCoreProps(deck.Title(), r.author, created)},
		{"docProps/app.xml", pptxAppProps(deck.SlideCount(), r.company)},
		{"ppt/presentation.xml", pptxPresentation(deck.SlideCount())},
		{"ppt/_rels/presentation.xml.rels", pptxPresentationRels(deck.SlideCount())},
		{"ppt/slideMasters/slideMaster1.xml", pptxSlideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", pptxSlideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", pptxSlideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", pptxSlideLayoutRels},
		{"ppt/theme/theme1.xml", pptxTheme},
	}

	for _, part := range parts {
		if err := writeZipTextFile(zw, part.name, part.content); err != nil {
			return err
		}
	}

	for i, slide := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}

		number := i + 1
		if err := writeZipTextFile(zw, fmt.Sprintf("ppt/slides/slide%d.xml", number), slideXML(slide)); err != nil {
			return err
		}
		if err := writeZipTextFile(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", number), pptxSlideRels); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing pptx archive: %w", err)
	}
	return nil
}

// ContentType returns the MIME type for PowerPoint exports
func (r *PPTXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
}

// Extension returns the file extension for PowerPoint exports
func (r *PPTXRenderer) Extension() string {
	return ".pptx"
}

func writeZipTextFile(writer *zip.Writer, name string, content string) error {
	w, err := writer.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}

// textRun describes one paragraph of a text box
type textRun struct {
	Text   string
	Size   int // points
	Color  string
	Bold   bool
	Italic bool
	Font   string
	Align  string // l, ctr, r
}

// slideBuilder accumulates shapes for one slide
type slideBuilder struct {
	shapes strings.Builder
	nextID int
}

func newSlideBuilder() *slideBuilder {
	return &slideBuilder{nextID: 2}
}

// pctX and pctY convert a percentage of the slide into EMU
func pctX(p float64) int { return int(math.Round(p * slideCX / 100)) }
func pctY(p float64) int { return int(math.Round(p * slideCY / 100)) }

func (b *slideBuilder) rect(x, y, w, h float64, fill string) {
	id := b.nextID
	b.nextID++
	fmt.Fprintf(&b.shapes,
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Shape %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`+
			`<a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:ln><a:noFill/></a:ln></p:spPr></p:sp>`,
		id, id, pctX(x), pctY(y), pctX(w), pctY(h), fill)
}

func (b *slideBuilder) text(x, y, w, h float64, anchor string, runs ...textRun) {
	id := b.nextID
	b.nextID++
	fmt.Fprintf(&b.shapes,
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`+
			`<p:txBody><a:bodyPr wrap="square" anchor="%s"><a:normAutofit/></a:bodyPr><a:lstStyle/>`,
		id, id, pctX(x), pctY(y), pctX(w), pctY(h), anchor)

	for _, run := range runs {
		align := run.Align
		if align == "" {
			align = "l"
		}
		fmt.Fprintf(&b.shapes, `<a:p><a:pPr algn="%s"/><a:r><a:rPr lang="en-US" sz="%d"`, align, run.Size*100)
		if run.Bold {
			b.shapes.WriteString(` b="1"`)
		}
		if run.Italic {
			b.shapes.WriteString(` i="1"`)
		}
		fmt.Fprintf(&b.shapes, ` dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, run.Color)
		if run.Font != "" {
			fmt.Fprintf(&b.shapes, `<a:latin typeface="%s"/>`, escapeXML(run.Font))
		}
		fmt.Fprintf(&b.shapes, `</a:rPr><a:t>%s</a:t></a:r></a:p>`, escapeXML(run.Text))
	}

	b.shapes.WriteString(`</p:txBody></p:sp>`)
}

// slideXML lays out one slide according to its style
func slideXML(slide entities.Slide) string {
	scheme := schemeFor(slide.Style())
	b := newSlideBuilder()
	content := slide.Content()

	switch slide.Style() {
	case entities.StyleTitle:
		b.text(5, 30, 90, 25, "ctr", textRun{Text: slide.Title(), Size: 60, Color: scheme.Title, Bold: true, Align: "ctr"})
		for i, point := range content {
			b.text(10, 65+float64(i)*8, 80, 7, "t", textRun{Text: point, Size: 24, Color: scheme.Text, Align: "ctr"})
		}

	case entities.StyleSection:
		b.text(5, 30, 90, 16, "b", textRun{Text: slide.Title(), Size: 44, Color: scheme.Title, Bold: true, Align: "ctr"})
		b.rect(20, 48, 60, 0.5, accentColor)
		for i, point := range content {
			b.text(10, 55+float64(i)*8, 80, 7, "t", textRun{Text: point, Size: 24, Color: scheme.Text, Align: "ctr"})
		}

	case entities.StyleQuote:
		b.text(5, 5, 15, 25, "t", textRun{Text: "“", Size: 120, Color: accentColor, Font: "Georgia"})
		b.text(10, 25, 80, 40, "ctr", textRun{Text: slide.Title(), Size: 32, Color: scheme.Title, Italic: true, Font: "Georgia", Align: "ctr"})
		for i, point := range content {
			b.text(15, 70+float64(i)*8, 70, 7, "t", textRun{Text: point, Size: 20, Color: scheme.Text, Align: "ctr"})
		}

	case entities.StyleData:
		b.rect(0, 0, 100, 20, accentColor)
		b.text(5, 4, 90, 12, "ctr", textRun{Text: slide.Title(), Size: 32, Color: "FFFFFF", Bold: true})
		left, right := splitColumns(content)
		for i, point := range left {
			b.text(10, 25+float64(i)*15, 35, 12, "t", textRun{Text: point, Size: 20, Color: scheme.Text})
		}
		for i, point := range right {
			b.text(55, 25+float64(i)*15, 35, 12, "t", textRun{Text: point, Size: 20, Color: scheme.Text})
		}

	default:
		b.text(5, 5, 90, 13, "b", textRun{Text: slide.Title(), Size: 36, Color: scheme.Title, Bold: true})
		b.rect(5, 20, 90, 0.3, accentColor)
		for i, point := range content {
			b.text(8, 25+float64(i)*12, 84, 11, "t", textRun{
				Text:  fmt.Sprintf("%d. %s", i+1, point),
				Size:  contentFontSize(point),
				Color: scheme.Text,
			})
		}
	}

	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<p:cSld>` +
		fmt.Sprintf(`<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, scheme.Background) +
		`<p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr/>` +
		b.shapes.String() +
		`</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sld>`
}

// contentFontSize shrinks long bullets, clamped to 18..24pt
func contentFontSize(point string) int {
	n := utf8.RuneCountInString(point)
	if n == 0 {
		return 24
	}
	return max(18, min(24, 600/n))
}
