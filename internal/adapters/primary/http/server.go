// Package http serves the deck API, the live viewer and the websocket feed.
package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// HTTPLogger provides structured logging for the HTTP server
type HTTPLogger struct {
	component string
	verbose   bool
	level     entities.LogLevel
}

// NewHTTPLogger creates a new HTTP logger instance
func NewHTTPLogger(component string, verbose bool) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		verbose:   verbose,
		level:     entities.LogLevelInfo,
	}
}

// NewHTTPLoggerWithLevel creates a new HTTP logger instance with specific level
func NewHTTPLoggerWithLevel(component string, verbose bool, level entities.LogLevel) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		verbose:   verbose,
		level:     level,
	}
}

// shouldLog checks if the message should be logged based on level
func (l *HTTPLogger) shouldLog(msgLevel entities.LogLevel) bool {
	levelMap := map[entities.LogLevel]int{
		entities.LogLevelDebug: 0,
		entities.LogLevelInfo:  1,
		entities.LogLevelWarn:  2,
		entities.LogLevelError: 3,
	}

	currentLevel := levelMap[l.level]
	if l.verbose {
		currentLevel = levelMap[entities.LogLevelDebug]
	}

	return levelMap[msgLevel] >= currentLevel
}

// Debug logs debug messages (only if debug level is enabled)
func (l *HTTPLogger) Debug(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelDebug) {
		log.Printf("[DEBUG] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Info logs informational messages
func (l *HTTPLogger) Info(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) {
		log.Printf("[INFO] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Warn logs warning messages
func (l *HTTPLogger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelWarn) {
		log.Printf("[WARN] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Error logs error messages (always logged)
func (l *HTTPLogger) Error(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelError) {
		log.Printf("[ERROR] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Success logs success messages
func (l *HTTPLogger) Success(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) {
		log.Printf("[SUCCESS] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// SetLevel updates the logging level
func (l *HTTPLogger) SetLevel(level entities.LogLevel) {
	l.level = level
}

// Server implements the HTTPServer interface
type Server struct {
	server    *http.Server
	listener  net.Listener
	connMgr   *ConnectionManager
	limiter   *rateLimiter
	genLimit  *rateLimiter
	proxies   *trustedProxies
	decks     ports.DeckService
	exporter  ports.DeckExporter
	extractor ports.DocumentExtractor
	prompts   ports.PromptCatalog
	viewer    ports.DeckRenderer
	monitor   *monitoring.Monitor
	config    *entities.ServerConfig
	logger    *HTTPLogger
	startedAt time.Time
	mu        sync.RWMutex
	running   bool
}

// NewServer creates a new HTTP server.
// config must not be nil, use config.GetDefaultConfig().Server if needed
func NewServer(decks ports.DeckService, exporter ports.DeckExporter, config *entities.ServerConfig) *Server {
	return NewServerWithLogging(decks, exporter, config, nil)
}

// NewServerWithLogging creates a new HTTP server with logging configuration
func NewServerWithLogging(decks ports.DeckService, exporter ports.DeckExporter, config *entities.ServerConfig, loggingConfig *entities.LoggingConfig) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}

	level := entities.LogLevelInfo
	verbose := false
	if loggingConfig != nil {
		level = loggingConfig.GetLevel()
		verbose = loggingConfig.Verbose
	}

	return &Server{
		decks:    decks,
		exporter: exporter,
		viewer:   export.NewViewerRenderer(),
		connMgr:  NewConnectionManager(),
		limiter:  newRateLimiter(defaultRateLimit, time.Minute),
		genLimit: newRateLimiter(generationRateLimit, time.Minute),
		proxies:  newTrustedProxies(config.TrustedProxies),
		monitor:  monitoring.NewMonitor(),
		config:   config,
		logger:   NewHTTPLoggerWithLevel("server", verbose, level),
	}
}

// SetExtractor sets the document extractor behind /api/extract/pptx
func (s *Server) SetExtractor(extractor ports.DocumentExtractor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractor = extractor
}

// SetPromptCatalog sets the catalog behind /api/prompts
func (s *Server) SetPromptCatalog(prompts ports.PromptCatalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = prompts
}

// SetViewer replaces the renderer used for the HTML viewer at /
func (s *Server) SetViewer(viewer ports.DeckRenderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = viewer
}

// Start starts the HTTP server. Port 0 picks a free port; see Addr.
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listening on %s:%d: %w", host, port, err)
	}

	go s.connMgr.Run(ctx)
	s.monitor.Start(ctx)

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.GetReadTimeout(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.GetWriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	s.listener = listener
	s.startedAt = time.Now()
	s.running = true
	s.mu.Unlock()

	go func() {
		s.logger.Info("HTTP server starting on %s", listener.Addr())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Monitor returns the server's activity counters
func (s *Server) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Addr returns the address the server listens on, or "" when stopped
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return errors.New("server not running")
	}
	server := s.server
	s.running = false
	s.listener = nil
	s.mu.Unlock()

	s.connMgr.CloseAll()
	s.limiter.stop()
	s.genLimit.stop()
	s.monitor.Stop()

	// in-flight handlers may still read server state, so shut down unlocked
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler returns the routed handler with CORS and the middleware chain applied
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(s.setupRoutes())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("no route for %s", r.URL.Path), http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("%s not allowed on %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})

	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/chat", createRateLimitMiddleware(http.HandlerFunc(s.handleChat), s.genLimit, s.proxies)).Methods(http.MethodPost)
	api.Handle("/generate", createRateLimitMiddleware(http.HandlerFunc(s.handleGenerate), s.genLimit, s.proxies)).Methods(http.MethodPost)
	api.HandleFunc("/parse", s.handleParse).Methods(http.MethodPost)
	api.HandleFunc("/deck", s.handleDeck).Methods(http.MethodGet)
	api.HandleFunc("/deck/export", s.handleDeckExport).Methods(http.MethodGet)
	api.HandleFunc("/export/formats", s.handleExportFormats).Methods(http.MethodGet)
	api.HandleFunc("/extract/pptx", s.handleExtract).Methods(http.MethodPost)
	api.HandleFunc("/prompts", s.handlePrompts).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	router.HandleFunc("/ws", s.handleWebSocket)
	router.HandleFunc("/", s.handleViewer).Methods(http.MethodGet)

	// Apply middleware in order: security -> rate limiting -> logging -> recovery
	handler := securityHeadersMiddleware(router)
	handler = createRateLimitMiddleware(handler, s.limiter, s.proxies)
	handler = createLoggingMiddleware(handler, s.logger, s.monitor)
	handler = createRecoveryMiddleware(handler, s.logger)

	return handler
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)
