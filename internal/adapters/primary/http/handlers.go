package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/extract"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

const (
	// maxJSONBody caps chat and parse payloads
	maxJSONBody = 4 << 20

	// maxUploadMemory is held in memory while parsing multipart uploads
	maxUploadMemory = 32 << 20
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
	Time    time.Time `json:"time"`
}

// ChatRequest carries a conversation for /api/chat and /api/generate.
// Prompt is a shortcut for a single user message.
type ChatRequest struct {
	Messages entities.Conversation `json:"messages"`
	Prompt   string                `json:"prompt,omitempty"`
}

// ChatResponse is the raw generated text
type ChatResponse struct {
	Text string `json:"text"`
}

// ParseRequest carries already generated text
type ParseRequest struct {
	Text string `json:"text"`
}

// ExtractResponse lists the slides pulled out of an upload
type ExtractResponse struct {
	FileName string                 `json:"fileName"`
	Slides   []ports.ExtractedSlide `json:"slides"`
}

// FormatsResponse lists the export formats
type FormatsResponse struct {
	Formats []string `json:"formats"`
}

// PromptsResponse lists the prompt catalog
type PromptsResponse struct {
	Prompts []entities.PromptTemplate `json:"prompts"`
}

// HealthResponse reports server state
type HealthResponse struct {
	Status  string `json:"status"`
	HasDeck bool   `json:"hasDeck"`
	Slides  int    `json:"slides"`
	Clients int    `json:"clients"`
	Uptime  string `json:"uptime"`
}

// MetricsResponse is the body of /api/metrics
type MetricsResponse struct {
	monitoring.Snapshot
	Clients     int                  `json:"clients"`
	ExportCache *entities.CacheStats `json:"exportCache,omitempty"`
}

// renderCacheReporter is implemented by exporters that cache renders
type renderCacheReporter interface {
	CacheStats() entities.CacheStats
}

// conversation returns the messages, falling back to Prompt
func (r ChatRequest) conversation() entities.Conversation {
	if len(r.Messages) == 0 && strings.TrimSpace(r.Prompt) != "" {
		return entities.Conversation{{Role: entities.RoleUser, Content: r.Prompt}}
	}
	return r.Messages
}

// handleChat proxies a conversation to the text generator
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	start := time.Now()
	text, err := s.decks.Chat(r.Context(), req.conversation())
	s.monitor.RecordGeneration(time.Since(start), err)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, ChatResponse{Text: text})
}

// handleGenerate generates, parses and stores a new deck
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	start := time.Now()
	deck, err := s.decks.Generate(r.Context(), req.conversation())
	s.recordGenerate(time.Since(start), deck, err)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, deck)
}

// handleParse parses and stores a deck from posted text
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	deck, err := s.decks.ParseText(r.Context(), req.Text, entities.SourceText)
	s.monitor.RecordParse(deck.SlideCount(), err)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, deck)
}

// handleDeck returns the current deck
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.decks.Current(r.Context())
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, deck)
}

// handleDeckExport streams the current deck as a download
func (s *Server) handleDeckExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(export.FormatPowerPoint)
	}

	deck, err := s.decks.Current(r.Context())
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	contentType, err := s.exporter.ContentType(format)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	fileName, err := s.exporter.FileName(deck, format)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	// Render fully before writing headers so failures still get a JSON error
	var buf bytes.Buffer
	start := time.Now()
	err = s.exporter.Export(r.Context(), deck, format, &buf)
	s.monitor.RecordExport(formatLabel(format), time.Since(start), err)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("Failed to write export response: %v", err)
	}
}

// handleExportFormats lists the registered export formats
func (s *Server) handleExportFormats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, FormatsResponse{Formats: s.exporter.SupportedFormats()})
}

// handleExtract pulls slide text and images out of an uploaded presentation
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	extractor := s.extractor
	s.mu.RUnlock()

	if extractor == nil {
		s.handleError(w, errors.New("no document extractor configured"), http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.handleError(w, fmt.Errorf("parsing upload: %w", err), http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.handleError(w, fmt.Errorf("reading upload: %w", err), http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	slides, err := extractor.Extract(file, header.Size)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, ExtractResponse{FileName: header.Filename, Slides: slides})
}

// handlePrompts returns the prompt catalog
func (s *Server) handlePrompts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	catalog := s.prompts
	s.mu.RUnlock()

	prompts := entities.DefaultPrompts()
	if catalog != nil {
		list, err := catalog.List(r.Context())
		if err != nil {
			s.handleServiceError(w, err)
			return
		}
		prompts = list
	}

	s.writeJSON(w, PromptsResponse{Prompts: prompts})
}

// handleHealth reports whether the server holds a deck and how many clients listen
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	startedAt := s.startedAt
	s.mu.RUnlock()

	response := HealthResponse{
		Status:  "ok",
		Clients: s.connMgr.Count(),
	}
	if !startedAt.IsZero() {
		response.Uptime = time.Since(startedAt).Round(time.Second).String()
	}

	if deck, err := s.decks.Current(r.Context()); err == nil {
		response.HasDeck = true
		response.Slides = deck.SlideCount()
	}

	s.writeJSON(w, response)
}

// handleMetrics reports activity counters and, when the exporter caches, its hit rate
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	response := MetricsResponse{
		Snapshot: s.monitor.Snapshot(),
		Clients:  s.connMgr.Count(),
	}
	if cached, ok := s.exporter.(renderCacheReporter); ok {
		stats := cached.CacheStats()
		response.ExportCache = &stats
	}

	s.writeJSON(w, response)
}

// recordGenerate counts a generate call as both a generation and a parse.
// Upstream failures never reach the parser, so they only count once.
func (s *Server) recordGenerate(elapsed time.Duration, deck *entities.Deck, err error) {
	var genErr *entities.GenerationError
	if errors.As(err, &genErr) || errors.Is(err, entities.ErrInvalidRequest) {
		s.monitor.RecordGeneration(elapsed, err)
		return
	}
	s.monitor.RecordGeneration(elapsed, nil)
	s.monitor.RecordParse(deck.SlideCount(), err)
}

// handleViewer serves the current deck as a browsable page
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	viewer := s.viewer
	s.mu.RUnlock()

	deck, err := s.decks.Current(r.Context())
	if errors.Is(err, entities.ErrNoDeck) {
		deck = &entities.Deck{}
	} else if err != nil {
		s.handleServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := viewer.Render(r.Context(), deck, &buf); err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", viewer.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("Failed to write viewer response: %v", err)
	}
}

// formatLabel is the canonical name of format for metrics
func formatLabel(format string) string {
	if parsed, err := export.ParseFormat(format); err == nil {
		return string(parsed)
	}
	return "unknown"
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// handleServiceError maps a domain error onto a status and user message
func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	status, message, code := classifyError(err)
	s.logger.Error("HTTP error (status %d): %v", status, err)
	writeErrorResponse(w, status, message, code)
}

// classifyError returns the status, user-facing message and code for err
func classifyError(err error) (int, string, string) {
	var (
		noContent *entities.NoContentError
		genErr    *entities.GenerationError
		exportErr *export.ExportError
	)

	switch {
	case errors.As(err, &noContent) || errors.Is(err, entities.ErrNoContent):
		return http.StatusUnprocessableEntity, entities.ErrNoContent.Error(), "no_content"
	case errors.As(err, &genErr):
		return genErr.HTTPStatus(), genErr.UserMessage(), string(genErr.Kind)
	case errors.Is(err, entities.ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request", "invalid_request"
	case errors.Is(err, entities.ErrNoDeck):
		return http.StatusNotFound, "No deck has been generated yet", "no_deck"
	case errors.As(err, &exportErr):
		switch exportErr.Type {
		case export.ErrorTypeConfiguration, export.ErrorTypeValidation:
			return http.StatusBadRequest, exportErr.Message, strings.ToLower(exportErr.Code)
		default:
			return http.StatusInternalServerError, "Export failed", strings.ToLower(exportErr.Code)
		}
	case errors.Is(err, extract.ErrNoSlides), errors.Is(err, extract.ErrNoContent):
		return http.StatusUnprocessableEntity, err.Error(), "no_slides"
	case errors.Is(err, extract.ErrInvalidArchive):
		return http.StatusBadRequest, "Invalid presentation file", "invalid_document"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The request timed out", "timeout"
	default:
		return http.StatusInternalServerError, "Internal server error", "internal"
	}
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	// Sanitize error message to prevent information disclosure
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusServiceUnavailable:
		message = "Service unavailable"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	// Log the actual error for debugging (server-side only)
	s.logger.Error("HTTP error (status %d): %v", status, err)

	writeErrorResponse(w, status, message, "")
}

// writeErrorResponse writes the JSON error envelope
func writeErrorResponse(w http.ResponseWriter, status int, message, code string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		s.handleError(w, fmt.Errorf("encoding response: %w", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("Failed to write JSON response: %v", err)
	}
}
