package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	if result == nil {
		result = GetDefaultConfig()
	}

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if prompts, ok := flags["prompts"].(string); ok && prompts != "" {
		result.Server.PromptsFile = prompts
	}

	if provider, ok := flags["provider"].(string); ok && provider != "" {
		result.Generator.Provider = provider
	}

	if model, ok := flags["model"].(string); ok && model != "" {
		result.Generator.Model = model
	}

	if format, ok := flags["format"].(string); ok && format != "" {
		result.Export.DefaultFormat = strings.ToLower(format)
	}

	if outputDir, ok := flags["output-dir"].(string); ok && outputDir != "" {
		result.Export.OutputDir = outputDir
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	if level, ok := flags["log-level"].(string); ok && level != "" {
		result.Logging.Level = strings.ToLower(level)
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Server configuration from environment
	if host := os.Getenv(envPrefix + "HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv(envPrefix + "PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	if origins := os.Getenv(envPrefix + "CORS_ORIGINS"); origins != "" {
		result.Server.CORSOrigins = getEnvSliceOrDefault("CORS_ORIGINS", result.Server.CORSOrigins)
	}
	if proxies := os.Getenv(envPrefix + "TRUSTED_PROXIES"); proxies != "" {
		result.Server.TrustedProxies = getEnvSliceOrDefault("TRUSTED_PROXIES", result.Server.TrustedProxies)
	}

	// Generator configuration from environment
	if provider := os.Getenv(envPrefix + "PROVIDER"); provider != "" {
		result.Generator.Provider = provider
	}

	if model := os.Getenv(envPrefix + "MODEL"); model != "" {
		result.Generator.Model = model
	}

	if baseURL := os.Getenv(envPrefix + "BASE_URL"); baseURL != "" {
		result.Generator.BaseURL = baseURL
	}

	if keyEnv := os.Getenv(envPrefix + "API_KEY_ENV"); keyEnv != "" {
		result.Generator.APIKeyEnv = keyEnv
	}

	if tokensStr := os.Getenv(envPrefix + "MAX_TOKENS"); tokensStr != "" {
		if tokens, err := strconv.Atoi(tokensStr); err == nil && tokens > 0 {
			result.Generator.MaxTokens = tokens
		}
	}

	if tempStr := os.Getenv(envPrefix + "TEMPERATURE"); tempStr != "" {
		if temp, err := strconv.ParseFloat(tempStr, 64); err == nil && temp >= 0 {
			result.Generator.Temperature = temp
		}
	}

	if retriesStr := os.Getenv(envPrefix + "MAX_RETRIES"); retriesStr != "" {
		if retries, err := strconv.Atoi(retriesStr); err == nil && retries > 0 {
			result.Generator.MaxRetries = retries
		}
	}

	// Export configuration from environment
	if outputDir := os.Getenv(envPrefix + "OUTPUT_DIR"); outputDir != "" {
		result.Export.OutputDir = outputDir
	}

	if format := os.Getenv(envPrefix + "EXPORT_FORMAT"); format != "" {
		result.Export.DefaultFormat = strings.ToLower(format)
	}

	if author := os.Getenv(envPrefix + "AUTHOR"); author != "" {
		result.Export.Author = author
	}

	if company := os.Getenv(envPrefix + "COMPANY"); company != "" {
		result.Export.Company = company
	}

	// Watcher configuration from environment
	if intervalStr := os.Getenv(envPrefix + "WATCH_INTERVAL"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			result.Watcher.IntervalMs = interval
		}
	}

	if debounceStr := os.Getenv(envPrefix + "WATCH_DEBOUNCE"); debounceStr != "" {
		if debounce, err := strconv.Atoi(debounceStr); err == nil && debounce >= 0 {
			result.Watcher.DebounceMs = debounce
		}
	}

	// Logging configuration from environment
	if level := os.Getenv(envPrefix + "LOG_LEVEL"); level != "" {
		result.Logging.Level = strings.ToLower(level)
	}

	if jsonStr := os.Getenv(envPrefix + "LOG_JSON"); jsonStr != "" {
		if asJSON, err := strconv.ParseBool(jsonStr); err == nil {
			result.Logging.JSONFormat = asJSON
		}
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = copyStrings(source.Server.CORSOrigins)
	}
	if source.Server.PromptsFile != "" {
		target.Server.PromptsFile = source.Server.PromptsFile
	}
	if len(source.Server.TrustedProxies) > 0 {
		target.Server.TrustedProxies = copyStrings(source.Server.TrustedProxies)
	}

	// Generator config
	if source.Generator.Provider != "" {
		target.Generator.Provider = source.Generator.Provider
	}
	if source.Generator.Model != "" {
		target.Generator.Model = source.Generator.Model
	}
	if source.Generator.APIKeyEnv != "" {
		target.Generator.APIKeyEnv = source.Generator.APIKeyEnv
	}
	if source.Generator.BaseURL != "" {
		target.Generator.BaseURL = source.Generator.BaseURL
	}
	if source.Generator.MaxTokens != 0 {
		target.Generator.MaxTokens = source.Generator.MaxTokens
	}
	// A zero temperature cannot be told apart from an unset one in TOML
	if source.Generator.Temperature != 0 {
		target.Generator.Temperature = source.Generator.Temperature
	}
	if source.Generator.TimeoutSec != 0 {
		target.Generator.TimeoutSec = source.Generator.TimeoutSec
	}
	if source.Generator.MaxRetries != 0 {
		target.Generator.MaxRetries = source.Generator.MaxRetries
	}
	if source.Generator.RetryDelayMs != 0 {
		target.Generator.RetryDelayMs = source.Generator.RetryDelayMs
	}
	if source.Generator.BackoffFactor != 0 {
		target.Generator.BackoffFactor = source.Generator.BackoffFactor
	}

	// Export config
	if source.Export.OutputDir != "" {
		target.Export.OutputDir = source.Export.OutputDir
	}
	if source.Export.DefaultFormat != "" {
		target.Export.DefaultFormat = source.Export.DefaultFormat
	}
	if source.Export.Author != "" {
		target.Export.Author = source.Export.Author
	}
	if source.Export.Company != "" {
		target.Export.Company = source.Export.Company
	}

	// Watcher config
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}

	// Logging config. Booleans only ever switch on from a later layer.
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	dst.Server.CORSOrigins = copyStrings(src.Server.CORSOrigins)
	dst.Server.TrustedProxies = copyStrings(src.Server.TrustedProxies)
	return &dst
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
