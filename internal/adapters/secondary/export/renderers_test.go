package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/test/builders"
)

func TestJSONRenderer_Render(t *testing.T) {
	renderer := NewJSONRenderer()
	deck := builders.AllStylesDeck()

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(context.Background(), deck, &buf))

	var doc struct {
		ID         string           `json:"id"`
		Title      string           `json:"title"`
		Prompt     string           `json:"prompt"`
		Source     string           `json:"source"`
		SlideCount int              `json:"slideCount"`
		Slides     []map[string]any `json:"slides"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "deck-test", doc.ID)
	assert.Equal(t, "Transforming Ideas", doc.Title)
	assert.Equal(t, "Quarterly business review", doc.Prompt)
	assert.Equal(t, "text", doc.Source)
	assert.Equal(t, 5, doc.SlideCount)
	require.Len(t, doc.Slides, 5)

	assert.Equal(t, "title", doc.Slides[0]["style"])
	assert.Equal(t, "from-blue-600 to-blue-700", doc.Slides[0]["bgColor"])
	assert.NotContains(t, doc.Slides[0], "dataType")
	assert.Equal(t, "chart", doc.Slides[4]["dataType"])

	assert.Equal(t, "application/json", renderer.ContentType())
	assert.Equal(t, ".json", renderer.Extension())
}

func TestMarkdownRenderer_Render(t *testing.T) {
	renderer := NewMarkdownRenderer()
	deck := builders.AllStylesDeck()

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(context.Background(), deck, &buf))
	out := buf.String()

	t.Run("front matter", func(t *testing.T) {
		require.True(t, strings.HasPrefix(out, "---\n"))
		end := strings.Index(out[4:], "---\n")
		require.Positive(t, end)

		var front map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out[4:4+end]), &front))
		assert.Equal(t, "Transforming Ideas", front["title"])
		assert.Equal(t, "Quarterly business review", front["prompt"])
		assert.Equal(t, 5, front["slides"])
		assert.Equal(t, "slidegen", front["generator"])
		assert.Equal(t, "2024-06-30T10:00:00Z", front["generated"])
	})

	t.Run("slides", func(t *testing.T) {
		assert.Contains(t, out, "<!-- style: title -->\n## Transforming Ideas\n\n- Your journey starts here\n- Innovation meets execution\n")
		assert.Contains(t, out, "<!-- style: data, data: chart -->\n## Market Overview")
		assert.Contains(t, out, "- Implement **data-driven** decisions")
		end := strings.Index(out[4:], "---\n")
		body := out[4+end+4:]
		assert.Equal(t, 4, strings.Count(body, "\n---\n\n"))
		assert.False(t, strings.HasSuffix(body, "---\n\n"))
	})

	assert.Equal(t, ".md", renderer.Extension())
}

func TestHTMLRenderer_Render(t *testing.T) {
	deck := builders.AllStylesDeck()

	t.Run("one section per slide", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewHTMLRenderer().Render(context.Background(), deck, &buf))
		out := buf.String()

		assert.Equal(t, 5, strings.Count(out, "<section class=\"slide slide-"))
		for _, style := range entities.AllStyles {
			assert.Contains(t, out, "slide-"+string(style)+" ")
		}
		assert.Contains(t, out, "from-blue-600 to-blue-700 text-white")
		assert.Contains(t, out, `data-type="chart"`)
		assert.Contains(t, out, "<title>Transforming Ideas</title>")
		assert.Contains(t, out, "<strong>data-driven</strong>")
		assert.Contains(t, out, "#2563EB")
		assert.NotContains(t, out, "new WebSocket")
	})

	t.Run("data slides split into columns", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewHTMLRenderer().Render(context.Background(), deck, &buf))
		out := buf.String()

		start := strings.Index(out, `<div class="columns">`)
		require.Positive(t, start)
		columns := out[start:]
		first := strings.Index(columns, "</ul>")
		assert.Contains(t, columns[:first], "Market size")
		assert.Contains(t, columns[:first], "45% YoY growth")
		assert.NotContains(t, columns[:first], "Enterprise 60%")
	})

	t.Run("untrusted text is escaped", func(t *testing.T) {
		hostile := builders.NewDeckBuilder().
			WithSlide(builders.NewSlideBuilder().
				WithTitle("<script>alert(1)</script>").
				WithContent(`<img src=x onerror="alert(2)">`, "[click](javascript:alert(3))")).
			Build()

		var buf bytes.Buffer
		require.NoError(t, NewHTMLRenderer().Render(context.Background(), hostile, &buf))
		out := buf.String()

		assert.NotContains(t, out, "<script>alert(1)")
		assert.NotContains(t, out, "onerror")
		assert.NotContains(t, out, "javascript:alert")
		assert.Contains(t, out, "&lt;script&gt;")
	})

	t.Run("viewer reloads on deck replacement", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewViewerRenderer().Render(context.Background(), deck, &buf))
		assert.Contains(t, buf.String(), "new WebSocket")
		assert.Contains(t, buf.String(), "deck_replaced")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var buf bytes.Buffer
		assert.ErrorIs(t, NewHTMLRenderer().Render(ctx, deck, &buf), context.Canceled)
	})
}

func TestInlineHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Foster collaboration", "Foster collaboration"},
		{"bold", "Implement **data-driven** decisions", "Implement <strong>data-driven</strong> decisions"},
		{"emphasis", "An *important* point", "An <em>important</em> point"},
		{"code", "Run `slidegen serve`", "Run <code>slidegen serve</code>"},
		{"strikethrough", "~~old~~ new", "<del>old</del> new"},
		{"numbered text stays inline", "1. First step", "1. First step"},
		{"heading marker stays inline", "# not a heading", "# not a heading"},
		{"raw html dropped", "a <b onclick=\"x\">b</b>", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(InlineHTML(tt.input)))
		})
	}

	t.Run("links keep href", func(t *testing.T) {
		out := string(InlineHTML("See [docs](https://example.com)"))
		assert.Contains(t, out, `href="https://example.com"`)
		assert.Contains(t, out, "nofollow")
	})
}

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		points []string
		left   int
		right  int
	}{
		{[]string{"a"}, 1, 0},
		{[]string{"a", "b"}, 1, 1},
		{[]string{"a", "b", "c"}, 2, 1},
		{[]string{"a", "b", "c", "d", "e"}, 3, 2},
	}

	for _, tt := range tests {
		left, right := splitColumns(tt.points)
		assert.Len(t, left, tt.left)
		assert.Len(t, right, tt.right)
	}
}

func BenchmarkRenderers(b *testing.B) {
	deck := builders.LargeDeck()
	svc := NewService(Options{})

	for _, format := range svc.SupportedFormats() {
		b.Run(format, func(b *testing.B) {
			var buf bytes.Buffer
			for i := 0; i < b.N; i++ {
				buf.Reset()
				if err := svc.Export(context.Background(), deck, format, &buf); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
