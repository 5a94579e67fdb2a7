package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of a backend call failure
type ErrorType string

const (
	// ErrTypeNetwork indicates the request never produced a response
	ErrTypeNetwork ErrorType = "network"

	// ErrTypeServer indicates a 5xx or otherwise unexpected response
	ErrTypeServer ErrorType = "server"

	// ErrTypeNotFound indicates a 404, e.g. "No results found"
	ErrTypeNotFound ErrorType = "not_found"

	// ErrTypeValidation indicates the backend rejected the input (400)
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeDecode indicates a response body that could not be decoded
	ErrTypeDecode ErrorType = "decode"

	// ErrTypeCanceled indicates the caller canceled the request
	ErrTypeCanceled ErrorType = "canceled"

	// ErrTypeConfiguration indicates an unusable client configuration
	ErrTypeConfiguration ErrorType = "configuration"
)

// Error represents a failed call to the Domains Lab backend
type Error struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Op is the endpoint that failed (upload, search, download, list)
	Op string `json:"op"`

	// Message is the server payload or a client-side description
	Message string `json:"message"`

	// StatusCode for HTTP-level errors
	StatusCode int `json:"status_code,omitempty"`

	// RequestID sent with the failed request
	RequestID string `json:"request_id,omitempty"`

	Cause error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("%s failed", e.Op), fmt.Sprintf("type=%s", e.Type)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same type
func (e *Error) Is(target error) bool {
	if other, ok := target.(*Error); ok {
		return e.Type == other.Type
	}
	return false
}

// UserMessage returns the text a user should see for this error: the
// server's own payload when there is one, otherwise the client description.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Type) + " error"
}

func newError(errType ErrorType, op, message string) *Error {
	return &Error{Type: errType, Op: op, Message: message}
}

func newErrorWithCause(errType ErrorType, op, message string, cause error) *Error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		errType = ErrTypeCanceled
	}
	return &Error{Type: errType, Op: op, Message: message, Cause: cause}
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == ErrTypeNotFound
}

// IsCanceled reports whether err was caused by context cancellation
func IsCanceled(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Type == ErrTypeCanceled {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// Message extracts a user-facing message from any error
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}
