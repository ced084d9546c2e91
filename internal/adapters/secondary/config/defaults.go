package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// envPrefix namespaces every environment override
const envPrefix = "SLIDEGEN_"

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("HOST", "localhost"),
			Port:            getEnvIntOrDefault("PORT", 3000),
			ReadTimeout:     getEnvIntOrDefault("READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("WRITE_TIMEOUT", 180),
			ShutdownTimeout: getEnvIntOrDefault("SHUTDOWN_TIMEOUT", 5),
			Environment:     getEnvOrDefault("ENV", "development"),
			CORSOrigins: getEnvSliceOrDefault("CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8080",
				"http://127.0.0.1:8080",
			}),
			PromptsFile:    getEnvOrDefault("PROMPTS_FILE", ""),
			TrustedProxies: getEnvSliceOrDefault("TRUSTED_PROXIES", nil),
		},
		Generator: entities.GeneratorConfig{
			Provider:      getEnvOrDefault("PROVIDER", entities.ProviderAnthropic),
			Model:         getEnvOrDefault("MODEL", ""),
			APIKeyEnv:     getEnvOrDefault("API_KEY_ENV", ""),
			BaseURL:       getEnvOrDefault("BASE_URL", ""),
			MaxTokens:     getEnvIntOrDefault("MAX_TOKENS", 4000),
			Temperature:   getEnvFloatOrDefault("TEMPERATURE", 0.7),
			TimeoutSec:    getEnvIntOrDefault("GENERATOR_TIMEOUT", 120),
			MaxRetries:    getEnvIntOrDefault("MAX_RETRIES", 3),
			RetryDelayMs:  getEnvIntOrDefault("RETRY_DELAY_MS", 1000),
			BackoffFactor: getEnvFloatOrDefault("BACKOFF_FACTOR", 2),
		},
		Export: entities.ExportConfig{
			OutputDir:     getEnvOrDefault("OUTPUT_DIR", "."),
			DefaultFormat: getEnvOrDefault("EXPORT_FORMAT", "pptx"),
			Author:        getEnvOrDefault("AUTHOR", ""),
			Company:       getEnvOrDefault("COMPANY", ""),
		},
		Watcher: entities.WatcherConfig{
			IntervalMs: getEnvIntOrDefault("WATCH_INTERVAL", 200),
			DebounceMs: getEnvIntOrDefault("WATCH_DEBOUNCE", 500),
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Verbose:    getEnvBoolOrDefault("LOG_VERBOSE", false),
			JSONFormat: getEnvBoolOrDefault("LOG_JSON", false),
			File:       getEnvOrDefault("LOG_FILE", ""),
		},
	}
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloatOrDefault returns environment variable as float64 or default
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns a comma-separated environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(envPrefix + key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
