package core

import (
	"errors"
	"fmt"
)

// ProviderError represents an error returned by a provider with full context.
type ProviderError struct {
	Provider  string
	Status    int
	RequestID string
	Code      string
	Message   string
	Err       error // Classification sentinel
	Cause     error // Underlying error, if any
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v: %s", e.Provider, e.Err, e.Message)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status=%d, code=%s, request_id=%s)",
			e.Provider, e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (status=%d, code=%s)",
		e.Provider, e.Message, e.Status, e.Code)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Sentinel errors for classification.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")

	// ErrNoCredential is returned before any request is sent when no API
	// token is configured.
	ErrNoCredential = errors.New("no credential: configure an API token before sending requests")

	// ErrStream classifies failures observed after a stream was opened.
	ErrStream = errors.New("stream error")
)

// Validation errors with actionable guidance.
var (
	ErrModelRequired       = errors.New("model required: pass a model ID to Client.Completion() or Client.Edit()")
	ErrPromptRequired      = errors.New("prompt required: set one with .Prompt()")
	ErrInstructionRequired = errors.New("instruction required: set one with .Instruction()")
)

// NewStreamError wraps a failure seen on an open stream.
func NewStreamError(provider string, cause error) error {
	var pe *ProviderError
	if errors.As(cause, &pe) && errors.Is(pe.Err, ErrStream) {
		return cause
	}
	msg := "stream failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &ProviderError{
		Provider: provider,
		Message:  msg,
		Err:      ErrStream,
		Cause:    cause,
	}
}
