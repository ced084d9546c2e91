package entities

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoContentError(t *testing.T) {
	err := fmt.Errorf("parsing: %w", &NoContentError{InputLength: 3})

	assert.True(t, errors.Is(err, ErrNoContent))

	var nce *NoContentError
	assert.True(t, errors.As(err, &nce))
	assert.Equal(t, 3, nce.InputLength)
	assert.Contains(t, (&NoContentError{}).Error(), "input is empty")
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status     int
		kind       GenerationErrorKind
		retryable  bool
		httpStatus int
	}{
		{http.StatusTooManyRequests, GenerationRateLimited, false, http.StatusTooManyRequests},
		{http.StatusServiceUnavailable, GenerationUnavailable, true, http.StatusServiceUnavailable},
		{http.StatusUnprocessableEntity, GenerationUnformattable, false, http.StatusUnprocessableEntity},
		{http.StatusUnauthorized, GenerationAuth, false, http.StatusBadGateway},
		{http.StatusForbidden, GenerationAuth, false, http.StatusBadGateway},
		{http.StatusBadRequest, GenerationInvalidRequest, false, http.StatusBadRequest},
		{http.StatusInternalServerError, GenerationUpstream, true, http.StatusBadGateway},
		{http.StatusBadGateway, GenerationUpstream, true, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := ClassifyStatus(tt.status, "boom")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.retryable, err.Retryable())
			assert.Equal(t, tt.httpStatus, err.HTTPStatus())
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestGenerationError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &GenerationError{Kind: GenerationTransport, Message: "request failed", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Retryable())
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "Failed to generate presentation", err.UserMessage())
}
