package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/extract"
	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
	"github.com/fredcamaral/slidegen/internal/test/builders"
)

func serve(t *testing.T, server *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestHandleChat(t *testing.T) {
	t.Run("returns raw text", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)

		conversation := entities.Conversation{{Role: entities.RoleUser, Content: "Make a deck about tea"}}
		decks.On("Chat", mock.Anything, conversation).Return("Title: Tea\n- Green", nil)

		body := `{"messages":[{"role":"user","content":"Make a deck about tea"}]}`
		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp ChatResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Title: Tea\n- Green", resp.Text)
		decks.AssertExpectations(t)
	})

	t.Run("prompt shortcut becomes a user message", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)

		decks.On("Chat", mock.Anything, entities.Conversation{{Role: entities.RoleUser, Content: "Tea"}}).
			Return("Title: Tea", nil)

		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"prompt":"Tea"}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		decks.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))

		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))

		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/chat", http.NoBody))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream error keeps its status", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)

		decks.On("Chat", mock.Anything, mock.Anything).
			Return("", entities.ClassifyStatus(http.StatusTooManyRequests, "slow down"))

		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"prompt":"x"}`)))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "rate_limited", body.Code)
		assert.Contains(t, body.Message, "Rate limit exceeded")
	})
}

func TestGenerationRateLimit(t *testing.T) {
	decks := new(MockDeckService)
	server := newTestServer(decks)
	decks.On("Chat", mock.Anything, mock.Anything).Return("Title: Tea", nil)
	decks.On("ParseText", mock.Anything, mock.Anything, entities.SourceText).Return(builders.MinimalDeck(), nil)

	for i := 0; i < generationRateLimit; i++ {
		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"prompt":"Tea"}`)))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"Tea"}`)))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decodeError(t, w).Code)

	w = serve(t, server, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"text":"Title: Tea"}`)))
	assert.Equal(t, http.StatusOK, w.Code, "parsing does not spend the generation quota")
}

func TestHandleGenerate(t *testing.T) {
	t.Run("returns the deck", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)
		deck := builders.AllStylesDeck()

		decks.On("Generate", mock.Anything, mock.Anything).Return(deck, nil)

		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"review"}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		var got struct {
			ID     string            `json:"id"`
			Slides []json.RawMessage `json:"slides"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, deck.ID, got.ID)
		assert.Len(t, got.Slides, deck.SlideCount())
	})

	t.Run("invalid conversation", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)

		decks.On("Generate", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: conversation must contain at least one message", entities.ErrInvalidRequest))

		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"messages":[]}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", decodeError(t, w).Code)
	})
}

func TestHandleParse(t *testing.T) {
	t.Run("parses posted text", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)

		decks.On("ParseText", mock.Anything, "Title: Hello", entities.SourceText).Return(builders.MinimalDeck(), nil)

		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"text":"Title: Hello"}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		decks.AssertExpectations(t)
	})

	t.Run("no content is unprocessable", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)

		decks.On("ParseText", mock.Anything, "   ", entities.SourceText).Return(nil, &entities.NoContentError{InputLength: 3})

		w := serve(t, server, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"text":"   "}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "no_content", body.Code)
		assert.Equal(t, entities.ErrNoContent.Error(), body.Message)
	})
}

func TestHandleDeck(t *testing.T) {
	t.Run("current deck", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)
		decks.On("Current", mock.Anything).Return(builders.MinimalDeck(), nil)

		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/deck", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Slide 1"`)
	})

	t.Run("no deck yet", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)
		decks.On("Current", mock.Anything).Return(nil, entities.ErrNoDeck)

		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/deck", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "no_deck", decodeError(t, w).Code)
	})
}

func TestHandleDeckExport(t *testing.T) {
	deck := builders.NewDeckBuilder().
		WithSlide(builders.NewSlideBuilder().WithTitle("Q3 Results").WithStyle(entities.StyleTitle)).
		Build()

	tests := []struct {
		name        string
		query       string
		status      int
		contentType string
		fileName    string
	}{
		{"defaults to pptx", "", http.StatusOK, "application/vnd.openxmlformats-officedocument.presentationml.presentation", "q3-results.pptx"},
		{"markdown alias", "?format=md", http.StatusOK, "text/markdown; charset=utf-8", "q3-results.md"},
		{"json", "?format=json", http.StatusOK, "application/json", "q3-results.json"},
		{"unknown format", "?format=pdf", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decks := new(MockDeckService)
			server := newTestServer(decks)
			decks.On("Current", mock.Anything).Return(deck, nil)

			w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/deck/export"+tt.query, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.Equal(t, "unsupported_format", decodeError(t, w).Code)
				return
			}
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, fmt.Sprintf("attachment; filename=%q", tt.fileName), w.Header().Get("Content-Disposition"))
			assert.NotZero(t, w.Body.Len())
		})
	}

	t.Run("no deck", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)
		decks.On("Current", mock.Anything).Return(nil, entities.ErrNoDeck)

		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/deck/export", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleExportFormats(t *testing.T) {
	server := newTestServer(new(MockDeckService))

	w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/export/formats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp FormatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.ElementsMatch(t, []string{"html", "json", "markdown", "pptx"}, resp.Formats)
}

func uploadRequest(t *testing.T, field, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract/pptx", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleExtract(t *testing.T) {
	t.Run("extracts uploaded slides", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))
		extractor := new(MockExtractor)
		server.SetExtractor(extractor)

		slides := []ports.ExtractedSlide{{Number: 1, Text: "Hello"}}
		extractor.On("Extract", mock.Anything, int64(4)).Return(slides, nil)

		w := serve(t, server, uploadRequest(t, "file", "deck.pptx", []byte("data")))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp ExtractResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "deck.pptx", resp.FileName)
		assert.Equal(t, slides, resp.Slides)
		extractor.AssertExpectations(t)
	})

	t.Run("real extractor rejects non-zip upload", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))
		server.SetExtractor(extract.NewPPTXExtractor())

		w := serve(t, server, uploadRequest(t, "file", "deck.pptx", []byte("not a zip")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_document", decodeError(t, w).Code)
	})

	t.Run("package without slides", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))
		extractor := new(MockExtractor)
		server.SetExtractor(extractor)
		extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, extract.ErrNoSlides)

		w := serve(t, server, uploadRequest(t, "file", "deck.pptx", []byte("data")))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))
		server.SetExtractor(new(MockExtractor))

		w := serve(t, server, uploadRequest(t, "upload", "deck.pptx", []byte("data")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no extractor configured", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))

		w := serve(t, server, uploadRequest(t, "file", "deck.pptx", []byte("data")))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandlePrompts(t *testing.T) {
	t.Run("defaults without catalog", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))

		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/prompts", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp PromptsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Prompts, len(entities.DefaultPrompts()))
	})

	t.Run("catalog", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))
		catalog := new(MockPromptCatalog)
		server.SetPromptCatalog(catalog)

		prompts := []entities.PromptTemplate{{Category: "Ops", Prompt: "Incident review"}}
		catalog.On("List", mock.Anything).Return(prompts, nil)

		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/prompts", nil))

		var resp PromptsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, prompts, resp.Prompts)
	})

	t.Run("catalog failure", func(t *testing.T) {
		server := newTestServer(new(MockDeckService))
		catalog := new(MockPromptCatalog)
		server.SetPromptCatalog(catalog)
		catalog.On("List", mock.Anything).Return(nil, errors.New("bad yaml"))

		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/prompts", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "bad yaml")
	})
}

func TestHandleHealth(t *testing.T) {
	decks := new(MockDeckService)
	server := newTestServer(decks)
	decks.On("Current", mock.Anything).Return(builders.AllStylesDeck(), nil)

	w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.HasDeck)
	assert.Equal(t, 5, resp.Slides)
	assert.Zero(t, resp.Clients)
}

func TestHandleMetrics(t *testing.T) {
	getMetrics := func(t *testing.T, server *Server) MetricsResponse {
		t.Helper()
		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp MetricsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		return resp
	}

	t.Run("counts parse generate and export activity", func(t *testing.T) {
		decks := new(MockDeckService)
		exporter := export.NewCachingExporter(export.NewService(export.Options{}), export.NewRenderCache(0, 0))
		server := NewServer(decks, exporter, getTestServerConfig())
		deck := builders.AllStylesDeck()

		decks.On("ParseText", mock.Anything, "Title: Hello", entities.SourceText).Return(builders.MinimalDeck(), nil)
		decks.On("Generate", mock.Anything, mock.Anything).Return(deck, nil)
		decks.On("Current", mock.Anything).Return(deck, nil)

		serve(t, server, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"text":"Title: Hello"}`)))
		serve(t, server, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"review"}`)))
		for i := 0; i < 2; i++ {
			w := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/deck/export?format=md", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}

		resp := getMetrics(t, server)
		assert.Equal(t, int64(2), resp.DecksParsed)
		assert.Equal(t, int64(1+deck.SlideCount()), resp.SlidesParsed)
		assert.Equal(t, int64(1), resp.Generation.Count)
		assert.Equal(t, int64(2), resp.Exports["markdown"].Count)
		assert.Equal(t, int64(4), resp.HTTPRequests)
		require.NotNil(t, resp.ExportCache)
		assert.Equal(t, int64(1), resp.ExportCache.Hits)
		assert.Equal(t, int64(1), resp.ExportCache.Misses)
	})

	t.Run("upstream failures count as failed generations only", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)

		decks.On("Generate", mock.Anything, mock.Anything).
			Return(nil, &entities.GenerationError{Kind: entities.GenerationUnavailable, Message: "no text generator configured"})
		decks.On("ParseText", mock.Anything, "   ", entities.SourceText).Return(nil, &entities.NoContentError{InputLength: 3})

		serve(t, server, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"review"}`)))
		serve(t, server, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"text":"   "}`)))

		resp := getMetrics(t, server)
		assert.Equal(t, int64(1), resp.Generation.Failures)
		assert.Equal(t, int64(1), resp.ParseFailures)
		assert.Zero(t, resp.DecksParsed)
		assert.Equal(t, int64(1), resp.HTTPErrors)
		assert.Nil(t, resp.ExportCache)
	})
}

func TestHandleViewer(t *testing.T) {
	t.Run("renders current deck", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)
		decks.On("Current", mock.Anything).Return(builders.AllStylesDeck(), nil)

		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "Transforming Ideas")
		assert.Contains(t, w.Body.String(), "/ws")
	})

	t.Run("placeholder without deck", func(t *testing.T) {
		decks := new(MockDeckService)
		server := newTestServer(decks)
		decks.On("Current", mock.Anything).Return(nil, entities.ErrNoDeck)

		w := serve(t, server, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No deck yet")
	})
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no content", &entities.NoContentError{}, http.StatusUnprocessableEntity, "no_content"},
		{"wrapped no content", fmt.Errorf("parse: %w", entities.ErrNoContent), http.StatusUnprocessableEntity, "no_content"},
		{"unavailable", entities.ClassifyStatus(http.StatusServiceUnavailable, ""), http.StatusServiceUnavailable, "unavailable"},
		{"unformattable", entities.ClassifyStatus(http.StatusUnprocessableEntity, ""), http.StatusUnprocessableEntity, "unformattable"},
		{"upstream", entities.ClassifyStatus(http.StatusInternalServerError, ""), http.StatusBadGateway, "upstream"},
		{"auth", entities.ClassifyStatus(http.StatusUnauthorized, ""), http.StatusBadGateway, "auth"},
		{"invalid request", fmt.Errorf("%w: empty", entities.ErrInvalidRequest), http.StatusBadRequest, "invalid_request"},
		{"no deck", entities.ErrNoDeck, http.StatusNotFound, "no_deck"},
		{"export validation", &export.ExportError{Type: export.ErrorTypeValidation, Code: "EMPTY_DECK"}, http.StatusBadRequest, "empty_deck"},
		{"export renderer", &export.ExportError{Type: export.ErrorTypeRenderer, Code: "RENDERER_ERROR"}, http.StatusInternalServerError, "renderer_error"},
		{"no slides", extract.ErrNoSlides, http.StatusUnprocessableEntity, "no_slides"},
		{"timeout", fmt.Errorf("call: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message, code := classifyError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, message)
		})
	}
}
