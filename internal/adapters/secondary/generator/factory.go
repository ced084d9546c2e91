package generator

import (
	"fmt"
	"log/slog"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// New builds the configured generator wrapped in the retry policy from cfg
func New(cfg entities.GeneratorConfig, logger *slog.Logger) (ports.TextGenerator, error) {
	var base ports.TextGenerator

	switch cfg.GetProvider() {
	case entities.ProviderAnthropic:
		key := cfg.APIKey()
		if key == "" {
			return nil, fmt.Errorf("Anthropic API key not configured (set %s)", cfg.GetAPIKeyEnv())
		}
		base = NewAnthropicGenerator(key, cfg)
	case entities.ProviderOpenAI:
		key := cfg.APIKey()
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key not configured (set %s)", cfg.GetAPIKeyEnv())
		}
		base = NewOpenAIGenerator(key, cfg)
	case entities.ProviderMock:
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}

	policy := RetryPolicy{
		MaxAttempts:   cfg.GetMaxRetries(),
		InitialDelay:  cfg.GetRetryDelay(),
		BackoffFactor: cfg.GetBackoffFactor(),
	}
	return NewRetrying(base, policy, logger), nil
}
