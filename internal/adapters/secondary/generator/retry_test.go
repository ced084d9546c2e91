package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, system string, messages []entities.Message) (string, error) {
	args := m.Called(ctx, system, messages)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Name() string {
	return "fake"
}

func newTestRetrying(next *MockTextGenerator, attempts int) (*Retrying, *[]time.Duration) {
	r := NewRetrying(next, RetryPolicy{MaxAttempts: attempts, InitialDelay: time.Second, BackoffFactor: 2}, nil)
	var delays []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return r, &delays
}

var msgs = []entities.Message{{Role: entities.RoleUser, Content: "x"}}

func TestRetrying_RetriesServerErrors(t *testing.T) {
	next := new(MockTextGenerator)
	next.On("Generate", mock.Anything, "sys", msgs).Return("", entities.ClassifyStatus(502, "bad gateway")).Once()
	next.On("Generate", mock.Anything, "sys", msgs).Return("", &entities.GenerationError{Kind: entities.GenerationTransport}).Once()
	next.On("Generate", mock.Anything, "sys", msgs).Return("Title: ok", nil).Once()

	r, delays := newTestRetrying(next, 3)
	text, err := r.Generate(context.Background(), "sys", msgs)

	require.NoError(t, err)
	assert.Equal(t, "Title: ok", text)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
	next.AssertNumberOfCalls(t, "Generate", 3)
}

func TestRetrying_GivesUp(t *testing.T) {
	next := new(MockTextGenerator)
	next.On("Generate", mock.Anything, "", msgs).Return("", entities.ClassifyStatus(503, "overloaded"))

	r, delays := newTestRetrying(next, 3)
	_, err := r.Generate(context.Background(), "", msgs)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	var genErr *entities.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, entities.GenerationUnavailable, genErr.Kind)
	assert.Len(t, *delays, 2)
	next.AssertNumberOfCalls(t, "Generate", 3)
}

func TestRetrying_DoesNotRetryClientErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"rate limited", entities.ClassifyStatus(429, "slow")},
		{"unformattable", entities.ClassifyStatus(422, "bad")},
		{"malformed", &entities.GenerationError{Kind: entities.GenerationMalformed}},
		{"plain error", errors.New("boom")},
		{"cancelled", context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := new(MockTextGenerator)
			next.On("Generate", mock.Anything, "", msgs).Return("", tt.err)

			r, delays := newTestRetrying(next, 3)
			_, err := r.Generate(context.Background(), "", msgs)

			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, *delays)
			next.AssertNumberOfCalls(t, "Generate", 1)
		})
	}
}

func TestRetrying_StopsOnCancel(t *testing.T) {
	next := new(MockTextGenerator)
	next.On("Generate", mock.Anything, "", msgs).Return("", entities.ClassifyStatus(500, "boom"))

	r := NewRetrying(next, RetryPolicy{MaxAttempts: 3, InitialDelay: time.Hour, BackoffFactor: 2}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := r.Generate(ctx, "", msgs)
	assert.ErrorIs(t, err, context.Canceled)
	next.AssertNumberOfCalls(t, "Generate", 1)
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
}

func TestNewRetrying_MinimumOneAttempt(t *testing.T) {
	next := new(MockTextGenerator)
	next.On("Generate", mock.Anything, "", msgs).Return("ok", nil)

	r := NewRetrying(next, RetryPolicy{}, nil)
	text, err := r.Generate(context.Background(), "", msgs)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, "fake", r.Name())
}
