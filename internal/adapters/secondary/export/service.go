package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// ExportFormat represents different export formats
type ExportFormat string

const (
	FormatJSON       ExportFormat = "json"
	FormatMarkdown   ExportFormat = "markdown"
	FormatHTML       ExportFormat = "html"
	FormatPowerPoint ExportFormat = "pptx"
)

// ParseFormat maps a user supplied name onto a format. "md" and "ppt" are accepted aliases.
func ParseFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "pptx", "ppt", "powerpoint":
		return FormatPowerPoint, nil
	default:
		return "", &ExportError{
			Type:    ErrorTypeConfiguration,
			Message: "unsupported export format",
			Details: name,
			Code:    "UNSUPPORTED_FORMAT",
		}
	}
}

// ExportOptions contains configuration for a file export
type ExportOptions struct {
	Format     ExportFormat `json:"format"`
	OutputPath string       `json:"output_path"`
}

// ExportResult contains the results of an export operation
type ExportResult struct {
	Success     bool      `json:"success"`
	Format      string    `json:"format"`
	OutputPath  string    `json:"output_path"`
	FileSize    int64     `json:"file_size"`
	SlideCount  int       `json:"slide_count"`
	Duration    string    `json:"duration"`
	Error       string    `json:"error,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ExportErrorType categorizes different types of export errors
type ExportErrorType string

const (
	ErrorTypeValidation    ExportErrorType = "validation"
	ErrorTypeRenderer      ExportErrorType = "renderer"
	ErrorTypeFilesystem    ExportErrorType = "filesystem"
	ErrorTypeConfiguration ExportErrorType = "configuration"
)

// ExportError provides detailed error information with categorization
type ExportError struct {
	Type    ExportErrorType `json:"type"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
	Code    string          `json:"code,omitempty"`
	Cause   error           `json:"-"`
}

func (e *ExportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s error: %s - %s", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// Options configures the built-in renderers
type Options struct {
	Author  string
	Company string
}

// Service renders decks through a registry of format renderers
type Service struct {
	renderers map[ExportFormat]ports.DeckRenderer
	now       func() time.Time
}

// NewService creates an export service with the JSON, Markdown, HTML and PPTX renderers
func NewService(opts Options) *Service {
	service := &Service{
		renderers: make(map[ExportFormat]ports.DeckRenderer),
		now:       time.Now,
	}

	service.RegisterRenderer(FormatJSON, NewJSONRenderer())
	service.RegisterRenderer(FormatMarkdown, NewMarkdownRenderer())
	service.RegisterRenderer(FormatHTML, NewHTMLRenderer())
	service.RegisterRenderer(FormatPowerPoint, NewPPTXRenderer(opts.Author, opts.Company))

	return service
}

// RegisterRenderer registers a renderer for a specific format
func (s *Service) RegisterRenderer(format ExportFormat, renderer ports.DeckRenderer) {
	s.renderers[format] = renderer
}

// Export writes deck in the named format to w
func (s *Service) Export(ctx context.Context, deck *entities.Deck, format string, w io.Writer) error {
	renderer, err := s.renderer(format)
	if err != nil {
		return err
	}

	if err := validateDeck(deck); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := renderer.Render(ctx, deck, w); err != nil {
		return categorizeError(err)
	}
	return nil
}

// ContentType returns the MIME type for the named format
func (s *Service) ContentType(format string) (string, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return "", err
	}
	return renderer.ContentType(), nil
}

// FileName returns a download name derived from the deck title
func (s *Service) FileName(deck *entities.Deck, format string) (string, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return "", err
	}

	base := "slidegen-presentation"
	if deck != nil && deck.SlideCount() > 0 {
		if slug := slugify(deck.Title()); slug != "" {
			base = slug
		}
	}
	return base + renderer.Extension(), nil
}

// SupportedFormats returns the registered format names in sorted order
func (s *Service) SupportedFormats() []string {
	formats := make([]string, 0, len(s.renderers))
	for format := range s.renderers {
		formats = append(formats, string(format))
	}
	sort.Strings(formats)
	return formats
}

// ExportToFile renders the deck to options.OutputPath. A directory path gets a generated file name.
func (s *Service) ExportToFile(ctx context.Context, deck *entities.Deck, options *ExportOptions) (*ExportResult, error) {
	start := s.now()

	if err := validateOptions(options); err != nil {
		return failedResult(err, start, s.now()), err
	}

	outputPath := options.OutputPath
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		name, err := s.FileName(deck, string(options.Format))
		if err != nil {
			return failedResult(err, start, s.now()), err
		}
		outputPath = filepath.Join(outputPath, name)
	}

	if err := validateFilePath(outputPath); err != nil {
		err = &ExportError{Type: ErrorTypeValidation, Message: "invalid output path", Details: outputPath, Code: "INVALID_PATH", Cause: err}
		return failedResult(err, start, s.now()), err
	}

	// Render into memory first so a failed export never leaves a partial file behind
	var buf bytes.Buffer
	if err := s.Export(ctx, deck, string(options.Format), &buf); err != nil {
		return failedResult(err, start, s.now()), err
	}

	if err := ensureOutputDirectory(outputPath); err != nil {
		return failedResult(err, start, s.now()), err
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0600); err != nil {
		err = &ExportError{Type: ErrorTypeFilesystem, Message: "failed to write export", Details: outputPath, Code: "WRITE_FAILED", Cause: err}
		return failedResult(err, start, s.now()), err
	}

	fileSize, _ := GetFileSize(outputPath)
	end := s.now()

	return &ExportResult{
		Success:     true,
		Format:      string(options.Format),
		OutputPath:  outputPath,
		FileSize:    fileSize,
		SlideCount:  deck.SlideCount(),
		Duration:    end.Sub(start).String(),
		GeneratedAt: end,
	}, nil
}

func (s *Service) renderer(format string) (ports.DeckRenderer, error) {
	parsed, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	renderer, exists := s.renderers[parsed]
	if !exists {
		return nil, &ExportError{
			Type:    ErrorTypeConfiguration,
			Message: "no renderer registered",
			Details: string(parsed),
			Code:    "UNSUPPORTED_FORMAT",
		}
	}
	return renderer, nil
}

// validateDeck rejects decks that have nothing to render
func validateDeck(deck *entities.Deck) error {
	if deck == nil {
		return &ExportError{Type: ErrorTypeValidation, Message: "deck cannot be nil", Code: "NULL_DECK"}
	}
	if err := deck.Validate(); err != nil {
		return &ExportError{Type: ErrorTypeValidation, Message: "deck cannot be exported", Details: err.Error(), Code: "EMPTY_DECK", Cause: err}
	}
	return nil
}

// validateOptions validates file export options
func validateOptions(options *ExportOptions) error {
	if options == nil {
		return &ExportError{Type: ErrorTypeValidation, Message: "export options cannot be nil", Code: "NULL_OPTIONS"}
	}

	if options.Format == "" {
		return &ExportError{Type: ErrorTypeValidation, Message: "export format is required", Code: "MISSING_FORMAT"}
	}

	if options.OutputPath == "" {
		return &ExportError{Type: ErrorTypeValidation, Message: "output path is required", Code: "MISSING_OUTPUT_PATH"}
	}

	return nil
}

// ensureOutputDirectory ensures the output directory exists
func ensureOutputDirectory(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return &ExportError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to create output directory",
			Details: dir,
			Code:    "MKDIR_FAILED",
			Cause:   err,
		}
	}
	return nil
}

// categorizeError wraps renderer failures in an ExportError
func categorizeError(err error) error {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &ExportError{
		Type:    ErrorTypeRenderer,
		Message: "renderer error",
		Details: err.Error(),
		Code:    "RENDERER_ERROR",
		Cause:   err,
	}
}

// failedResult creates an error result
func failedResult(err error, start, end time.Time) *ExportResult {
	return &ExportResult{
		Success:     false,
		Error:       err.Error(),
		Duration:    end.Sub(start).String(),
		GeneratedAt: end,
	}
}

// GetFileSize returns the size of a file in bytes
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// validateFilePath validates a file path to prevent directory traversal
func validateFilePath(path string) error {
	if path == "" {
		return errors.New("empty path")
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return errors.New("path contains directory traversal")
		}
	}

	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a slide title into a file-name friendly string
func slugify(title string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	return slug
}

// Ensure Service implements ports.DeckExporter
var _ ports.DeckExporter = (*Service)(nil)
