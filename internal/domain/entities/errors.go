package entities

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoContent is returned when generated text has no usable lines at all
	ErrNoContent = errors.New("no valid content found in the response")

	// ErrInvalidSlide is returned when a slide record would break its invariants
	ErrInvalidSlide = errors.New("invalid slide")

	// ErrNoDeck is returned when no deck has been generated yet
	ErrNoDeck = errors.New("no deck available")

	// ErrInvalidRequest marks caller input that cannot be processed
	ErrInvalidRequest = errors.New("invalid request")
)

// NoContentError is the parser's only hard failure
type NoContentError struct {
	// InputLength is the length of the raw text that was parsed
	InputLength int
}

func (e *NoContentError) Error() string {
	if e.InputLength == 0 {
		return ErrNoContent.Error() + ": input is empty"
	}
	return fmt.Sprintf("%s: %d bytes of input contained no non-empty lines", ErrNoContent.Error(), e.InputLength)
}

// Is lets errors.Is(err, ErrNoContent) match
func (e *NoContentError) Is(target error) bool {
	return target == ErrNoContent
}

// GenerationErrorKind classifies failures of the upstream text-generation call
type GenerationErrorKind string

const (
	GenerationTransport      GenerationErrorKind = "transport"
	GenerationMalformed      GenerationErrorKind = "malformed"
	GenerationRateLimited    GenerationErrorKind = "rate_limited"
	GenerationUnavailable    GenerationErrorKind = "unavailable"
	GenerationInvalidRequest GenerationErrorKind = "invalid_request"
	GenerationAuth           GenerationErrorKind = "auth"
	GenerationUnformattable  GenerationErrorKind = "unformattable"
	GenerationUpstream       GenerationErrorKind = "upstream"
)

// GenerationError describes a failed text-generation call
type GenerationError struct {
	Kind       GenerationErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.UserMessage()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Kind, e.StatusCode, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether another attempt may succeed
func (e *GenerationError) Retryable() bool {
	switch e.Kind {
	case GenerationTransport, GenerationUnavailable, GenerationUpstream:
		return true
	default:
		return false
	}
}

// UserMessage returns the message shown to end users for this kind
func (e *GenerationError) UserMessage() string {
	switch e.Kind {
	case GenerationRateLimited:
		return "Rate limit exceeded. Please wait a moment and try again."
	case GenerationUnavailable:
		return "AI service is temporarily unavailable. Please try again later."
	case GenerationUnformattable:
		return "Failed to generate valid presentation format. Please try rephrasing your request."
	case GenerationMalformed:
		return "Invalid response format from API"
	case GenerationAuth:
		return "AI service credentials are not configured correctly"
	case GenerationInvalidRequest:
		return "The request was rejected by the AI service"
	default:
		return "Failed to generate presentation"
	}
}

// HTTPStatus maps the kind onto the status returned to API callers
func (e *GenerationError) HTTPStatus() int {
	switch e.Kind {
	case GenerationRateLimited:
		return http.StatusTooManyRequests
	case GenerationUnavailable:
		return http.StatusServiceUnavailable
	case GenerationUnformattable:
		return http.StatusUnprocessableEntity
	case GenerationInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// ClassifyStatus builds a GenerationError from an upstream HTTP status
func ClassifyStatus(status int, message string) *GenerationError {
	var kind GenerationErrorKind
	switch {
	case status == http.StatusTooManyRequests:
		kind = GenerationRateLimited
	case status == http.StatusServiceUnavailable:
		kind = GenerationUnavailable
	case status == http.StatusUnprocessableEntity:
		kind = GenerationUnformattable
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = GenerationAuth
	case status >= 500:
		kind = GenerationUpstream
	default:
		kind = GenerationInvalidRequest
	}
	return &GenerationError{Kind: kind, StatusCode: status, Message: message}
}
