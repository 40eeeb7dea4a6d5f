package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies analysis failures for callers and the API layer.
type ErrorKind string

const (
	// ErrKindInvalidInput is a local validation failure, rejected before
	// any network call.
	ErrKindInvalidInput ErrorKind = "invalid_input"
	// ErrKindEngineUnavailable means the risk engine produced no response.
	ErrKindEngineUnavailable ErrorKind = "engine_unavailable"
	// ErrKindEngineTimeout means the engine call exceeded its deadline.
	ErrKindEngineTimeout ErrorKind = "engine_timeout"
	// ErrKindEngineRejected means the engine responded non-2xx; Detail
	// carries the engine's error payload verbatim.
	ErrKindEngineRejected ErrorKind = "engine_rejected"
	// ErrKindEmptyResult means the engine responded successfully but no
	// stock entries could be extracted. Distinct from zero risk.
	ErrKindEmptyResult ErrorKind = "empty_result"
)

// EngineErrorDetail is the engine's error payload, surfaced as-is so the
// caller can refine input without resubmitting blind.
type EngineErrorDetail struct {
	Message         string          `json:"error,omitempty"`
	AvailableStocks []string        `json:"availableStocks,omitempty"`
	Raw             json.RawMessage `json:"-"`
}

// AnalysisError is the typed failure returned by the analysis pipeline.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Detail  *EngineErrorDetail
	cause   error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// NewInvalidInput builds a validation failure.
func NewInvalidInput(format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrKindInvalidInput,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewEngineUnavailable wraps a transport failure.
func NewEngineUnavailable(cause error) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrKindEngineUnavailable,
		Message: "risk engine is unavailable",
		cause:   cause,
	}
}

// NewEngineTimeout wraps a deadline expiry on the engine call.
func NewEngineTimeout(cause error) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrKindEngineTimeout,
		Message: "risk engine call timed out",
		cause:   cause,
	}
}

// NewEngineRejected wraps a non-2xx engine response with its payload.
func NewEngineRejected(statusCode int, detail *EngineErrorDetail) *AnalysisError {
	msg := fmt.Sprintf("risk engine rejected the request (status %d)", statusCode)
	if detail != nil && detail.Message != "" {
		msg = detail.Message
	}
	return &AnalysisError{
		Kind:    ErrKindEngineRejected,
		Message: msg,
		Detail:  detail,
	}
}

// NewEmptyResult signals a successful engine response with no usable data.
func NewEmptyResult() *AnalysisError {
	return &AnalysisError{
		Kind:    ErrKindEmptyResult,
		Message: "risk engine returned no usable stock data",
	}
}

// KindOf returns the error kind of err, or an empty string when err is not
// an AnalysisError.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
