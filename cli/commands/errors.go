package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petal-labs/quill/core"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitValidation  = 1
	ExitProvider    = 2
	ExitNetwork     = 3
	ExitInterrupted = 130
)

// exitError wraps an error with an exit code.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCodeFor classifies a request error.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, core.ErrNoCredential),
		errors.Is(err, core.ErrModelRequired),
		errors.Is(err, core.ErrPromptRequired),
		errors.Is(err, core.ErrInstructionRequired):
		return ExitValidation
	case errors.Is(err, core.ErrNetwork):
		return ExitNetwork
	default:
		return ExitProvider
	}
}

// handleError reports a request error on stderr and returns it with the
// matching exit code.
func (a *App) handleError(err error) error {
	code := exitCodeFor(err)

	var provErr *core.ProviderError
	switch {
	case errors.As(err, &provErr):
		if a.jsonOutput {
			a.outputErrorJSON(provErr)
		} else {
			fmt.Fprintf(a.stderr, "Error: %s\n", provErr.Message)
			if provErr.RequestID != "" {
				fmt.Fprintf(a.stderr, "  Provider: %s, Request ID: %s\n", provErr.Provider, provErr.RequestID)
			}
			if errors.Is(err, core.ErrNoCredential) {
				fmt.Fprintf(a.stderr, "  Set %s or providers.%s.api_key_env in %s\n",
					envVarForProvider(a.provider), a.provider, a.configPath())
			}
		}
	case code == ExitValidation:
		a.outputSimpleError("validation_error", err)
	default:
		a.outputSimpleError("error", err)
	}

	return &exitError{code: code, err: err, reported: true}
}

func (a *App) outputErrorJSON(provErr *core.ProviderError) {
	output := map[string]any{
		"error": map[string]any{
			"type":       provErr.Code,
			"message":    provErr.Message,
			"provider":   provErr.Provider,
			"status":     provErr.Status,
			"request_id": provErr.RequestID,
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}

func (a *App) outputSimpleError(errType string, err error) {
	if !a.jsonOutput {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return
	}

	output := map[string]any{
		"error": map[string]any{
			"type":    errType,
			"message": err.Error(),
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}
