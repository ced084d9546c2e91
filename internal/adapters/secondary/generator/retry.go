package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// RetryPolicy controls how failed generation calls are repeated
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy makes three attempts waiting 1s then 2s
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second, BackoffFactor: 2}
}

// Delay returns the wait before the attempt following attempt (0-based)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return time.Duration(float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt)))
}

// Retrying wraps a generator and repeats calls that fail with a retryable error
type Retrying struct {
	next   ports.TextGenerator
	policy RetryPolicy
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrying decorates next with policy
func NewRetrying(next ports.TextGenerator, policy RetryPolicy, logger *slog.Logger) *Retrying {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	return &Retrying{
		next:   next,
		policy: policy,
		logger: logger.With("component", "generator_retry"),
		sleep:  sleepContext,
	}
}

// Name returns the wrapped provider name
func (r *Retrying) Name() string {
	return r.next.Name()
}

// Generate calls the wrapped generator until it succeeds, fails with a
// non-retryable error, or runs out of attempts. No wait follows the last attempt.
func (r *Retrying) Generate(ctx context.Context, system string, messages []entities.Message) (string, error) {
	var lastErr error

	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		text, err := r.next.Generate(ctx, system, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var genErr *entities.GenerationError
		if !errors.As(err, &genErr) || !genErr.Retryable() {
			return "", err
		}

		if attempt == r.policy.MaxAttempts-1 {
			break
		}

		delay := r.policy.Delay(attempt)
		r.logger.Warn("Generation attempt failed, retrying",
			slog.String("provider", r.next.Name()),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
