package export

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// HTMLRenderer implements export to a standalone HTML viewer
type HTMLRenderer struct {
	template   *template.Template
	liveReload bool
}

// NewHTMLRenderer creates a new HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{template: template.Must(newHTMLTemplate().Parse(viewerHTMLTemplate))}
}

// NewViewerRenderer creates an HTML renderer whose page reloads when the
// server broadcasts a replaced deck over /ws
func NewViewerRenderer() *HTMLRenderer {
	r := NewHTMLRenderer()
	r.liveReload = true
	return r
}

func newHTMLTemplate() *template.Template {
	return template.New("viewer").Funcs(template.FuncMap{
		"inline": InlineHTML,
		"hex": func(color string) template.CSS {
			return template.CSS("#" + color) // #nosec G203 - colours come from the fixed scheme table
		},
	})
}

type htmlSlide struct {
	Number     int
	Title      string
	Style      string
	DataType   string
	Background string
	TextColor  string
	Content    []string
	Left       []string
	Right      []string
}

type htmlStyle struct {
	Name   string
	Scheme colorScheme
}

type htmlPage struct {
	Title       string
	Prompt      string
	GeneratedAt string
	SlideCount  int
	Slides      []htmlSlide
	Styles      []htmlStyle
	Accent      string
	LiveReload  bool
}

// Render exports the deck as a single self-contained HTML page
func (r *HTMLRenderer) Render(ctx context.Context, deck *entities.Deck, w io.Writer) error {
	page := htmlPage{
		Title:      deck.Title(),
		Prompt:     deck.Prompt,
		SlideCount: deck.SlideCount(),
		Accent:     accentColor,
		LiveReload: r.liveReload,
	}
	if !deck.GeneratedAt.IsZero() {
		page.GeneratedAt = deck.GeneratedAt.UTC().Format(time.RFC3339)
	}

	for _, style := range entities.AllStyles {
		page.Styles = append(page.Styles, htmlStyle{Name: string(style), Scheme: schemeFor(style)})
	}

	for i, slide := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}

		content := slide.Content()
		view := htmlSlide{
			Number:     i + 1,
			Title:      slide.Title(),
			Style:      string(slide.Style()),
			Background: tokenClasses(slide.Background()),
			TextColor:  tokenClasses(slide.TextColor()),
			Content:    content,
		}
		if subtype, ok := slide.DataSubtype(); ok {
			view.DataType = string(subtype)
			view.Left, view.Right = splitColumns(content)
		}
		page.Slides = append(page.Slides, view)
	}

	if err := r.template.Execute(w, page); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

// tokenClasses keeps palette tokens usable as class names
func tokenClasses(token string) string {
	return strings.Join(strings.Fields(token), " ")
}

// ContentType returns the MIME type for HTML exports
func (r *HTMLRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Extension returns the file extension for HTML exports
func (r *HTMLRenderer) Extension() string {
	return ".html"
}

const viewerHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="generator" content="slidegen">
    {{- if .GeneratedAt}}
    <meta name="export-date" content="{{.GeneratedAt}}">
    {{- end}}
    <title>{{.Title}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #0f172a; }
        .slide { display: none; width: 100vw; height: 100vh; padding: 6vh 8vw; flex-direction: column; justify-content: center; }
        .slide.active { display: flex; }
        .slide h2 { font-size: 3rem; margin-bottom: 2rem; }
        .slide ul { list-style: none; }
        .slide li { font-size: 1.5rem; margin: 0.75rem 0; }
        .slide-title { text-align: center; }
        .slide-title h2 { font-size: 4.5rem; }
        .slide-section .bar { width: 100%; height: 4px; margin-bottom: 2rem; }
        .slide-content h2 { border-bottom: 4px solid {{hex .Accent}}; padding-bottom: 1rem; }
        .slide-content ol li { font-size: 1.5rem; margin: 0.75rem 1.5rem; }
        .slide-quote .mark { font-size: 8rem; line-height: 1; color: {{hex .Accent}}; }
        .slide-quote h2 { font-family: Georgia, serif; font-style: italic; }
        .slide-data header { background: {{hex .Accent}}; color: #FFFFFF; margin: -6vh -8vw 2rem; padding: 4vh 8vw; }
        .slide-data .columns { display: grid; grid-template-columns: 1fr 1fr; gap: 3rem; }
{{- range .Styles}}
        .slide-{{.Name}} { background: {{hex .Scheme.Background}}; color: {{hex .Scheme.Text}}; }
        .slide-{{.Name}} h2 { color: {{hex .Scheme.Title}}; }
{{- end}}
        .slide-section .bar { background: {{hex .Accent}}; }
        .counter { position: fixed; right: 1.5rem; bottom: 1rem; color: #94a3b8; font-size: 0.9rem; }
    </style>
</head>
<body>
{{- range .Slides}}
    <section class="slide slide-{{.Style}} {{.Background}} {{.TextColor}}" data-index="{{.Number}}" data-style="{{.Style}}"{{if .DataType}} data-type="{{.DataType}}"{{end}}>
    {{- if eq .Style "title"}}
        <h2>{{.Title}}</h2>
        <ul>{{range .Content}}<li>{{inline .}}</li>{{end}}</ul>
    {{- else if eq .Style "section"}}
        <div class="bar"></div>
        <h2>{{.Title}}</h2>
        <ul>{{range .Content}}<li>{{inline .}}</li>{{end}}</ul>
    {{- else if eq .Style "quote"}}
        <div class="mark">&ldquo;</div>
        <h2>{{.Title}}</h2>
        <ul>{{range .Content}}<li>{{inline .}}</li>{{end}}</ul>
    {{- else if eq .Style "data"}}
        <header><h2>{{.Title}}</h2></header>
        <div class="columns">
            <ul>{{range .Left}}<li>{{inline .}}</li>{{end}}</ul>
            <ul>{{range .Right}}<li>{{inline .}}</li>{{end}}</ul>
        </div>
    {{- else}}
        <h2>{{.Title}}</h2>
        <ol>{{range .Content}}<li>{{inline .}}</li>{{end}}</ol>
    {{- end}}
    </section>
{{- else}}
    <section class="slide active"><h2>No deck yet</h2></section>
{{- end}}
    <div class="counter"><span id="current">1</span> / {{.SlideCount}}</div>
    <script>
        (function () {
            var slides = document.querySelectorAll('.slide');
            var current = 0;
            function show(i) {
                if (!slides.length) { return; }
                current = Math.max(0, Math.min(slides.length - 1, i));
                slides.forEach(function (s, n) { s.classList.toggle('active', n === current); });
                document.getElementById('current').textContent = current + 1;
            }
            document.addEventListener('keydown', function (e) {
                if (e.key === 'ArrowRight' || e.key === ' ' || e.key === 'PageDown') { show(current + 1); }
                if (e.key === 'ArrowLeft' || e.key === 'PageUp') { show(current - 1); }
                if (e.key === 'Home') { show(0); }
                if (e.key === 'End') { show(slides.length - 1); }
            });
            show(0);
        {{- if .LiveReload}}
            var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            var ws = new WebSocket(proto + location.host + '/ws');
            ws.onmessage = function (msg) {
                var event = JSON.parse(msg.data);
                if (event.type === 'deck_replaced') { location.reload(); }
            };
        {{- end}}
        })();
    </script>
</body>
</html>
`
