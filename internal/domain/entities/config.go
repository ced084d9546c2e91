package entities

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Generator GeneratorConfig `toml:"generator"`
	Export    ExportConfig    `toml:"export"`
	Watcher   WatcherConfig   `toml:"watcher"`
	Logging   LoggingConfig   `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator config: %w", err)
	}

	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
	PromptsFile     string   `toml:"prompts_file"`
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means the headers are ignored.
	TrustedProxies  []string `toml:"trusted_proxies"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return errors.New("timeouts must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	for _, proxy := range s.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("invalid trusted proxy: %q (must be an IP or CIDR)", proxy)
		}
	}

	return nil
}

func validProxy(proxy string) bool {
	if _, _, err := net.ParseCIDR(proxy); err == nil {
		return true
	}
	return net.ParseIP(proxy) != nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration. Generation calls
// can take a while, so the default is longer than a plain file server's.
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 180 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// Generator provider names
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// GeneratorConfig configures the upstream text-generation service
type GeneratorConfig struct {
	Provider      string  `toml:"provider"`
	Model         string  `toml:"model"`
	APIKeyEnv     string  `toml:"api_key_env"`
	BaseURL       string  `toml:"base_url"`
	MaxTokens     int     `toml:"max_tokens"`
	Temperature   float64 `toml:"temperature"`
	TimeoutSec    int     `toml:"timeout"`
	MaxRetries    int     `toml:"max_retries"`
	RetryDelayMs  int     `toml:"retry_delay_ms"`
	BackoffFactor float64 `toml:"backoff_factor"`
}

// Validate validates generator configuration
func (g GeneratorConfig) Validate() error {
	switch strings.ToLower(g.Provider) {
	case ProviderAnthropic, ProviderOpenAI, ProviderMock, "":
	default:
		return fmt.Errorf("unknown provider %q (must be anthropic, openai, or mock)", g.Provider)
	}

	if g.MaxTokens < 0 {
		return errors.New("max tokens must be non-negative")
	}

	if g.Temperature < 0 || g.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}

	if g.TimeoutSec < 0 {
		return errors.New("timeout must be non-negative")
	}

	if g.MaxRetries < 0 {
		return errors.New("max retries must be non-negative")
	}

	if g.RetryDelayMs < 0 {
		return errors.New("retry delay must be non-negative")
	}

	if g.BackoffFactor < 0 {
		return errors.New("backoff factor must be non-negative")
	}

	if g.BaseURL != "" && !strings.HasPrefix(g.BaseURL, "http://") && !strings.HasPrefix(g.BaseURL, "https://") {
		return fmt.Errorf("base URL must start with http:// or https://: %s", g.BaseURL)
	}

	return nil
}

// GetProvider returns the provider name with default
func (g GeneratorConfig) GetProvider() string {
	if g.Provider == "" {
		return ProviderAnthropic
	}
	return strings.ToLower(g.Provider)
}

// GetAPIKeyEnv returns the environment variable holding the API key
func (g GeneratorConfig) GetAPIKeyEnv() string {
	if g.APIKeyEnv != "" {
		return g.APIKeyEnv
	}
	if g.GetProvider() == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// APIKey reads the API key from the environment
func (g GeneratorConfig) APIKey() string {
	return os.Getenv(g.GetAPIKeyEnv())
}

// GetMaxTokens returns the token limit with default
func (g GeneratorConfig) GetMaxTokens() int {
	if g.MaxTokens <= 0 {
		return 4000
	}
	return g.MaxTokens
}

// GetTimeout returns the per-request timeout
func (g GeneratorConfig) GetTimeout() time.Duration {
	if g.TimeoutSec <= 0 {
		return 120 * time.Second
	}
	return time.Duration(g.TimeoutSec) * time.Second
}

// GetMaxRetries returns the attempt count with default
func (g GeneratorConfig) GetMaxRetries() int {
	if g.MaxRetries <= 0 {
		return 3
	}
	return g.MaxRetries
}

// GetRetryDelay returns the initial retry delay
func (g GeneratorConfig) GetRetryDelay() time.Duration {
	if g.RetryDelayMs <= 0 {
		return time.Second
	}
	return time.Duration(g.RetryDelayMs) * time.Millisecond
}

// GetBackoffFactor returns the delay multiplier with default
func (g GeneratorConfig) GetBackoffFactor() float64 {
	if g.BackoffFactor <= 0 {
		return 2
	}
	return g.BackoffFactor
}

// ExportConfig contains deck export defaults
type ExportConfig struct {
	OutputDir     string `toml:"output_dir"`
	DefaultFormat string `toml:"default_format"`
	Author        string `toml:"author"`
	Company       string `toml:"company"`
}

// Validate validates export configuration
func (e ExportConfig) Validate() error {
	switch strings.ToLower(e.DefaultFormat) {
	case "", "json", "markdown", "html", "pptx":
	default:
		return fmt.Errorf("unsupported default export format: %s", e.DefaultFormat)
	}
	return nil
}

// GetOutputDir returns the output directory with default
func (e ExportConfig) GetOutputDir() string {
	if e.OutputDir == "" {
		return "."
	}
	return e.OutputDir
}

// GetDefaultFormat returns the export format with default
func (e ExportConfig) GetDefaultFormat() string {
	if e.DefaultFormat == "" {
		return "pptx"
	}
	return strings.ToLower(e.DefaultFormat)
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	IntervalMs int `toml:"interval_ms"`
	DebounceMs int `toml:"debounce_ms"`
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}

	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}

	return nil
}

// GetInterval returns the watcher interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the debounce time as a duration
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Enable verbose logging
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log to file (optional)
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
