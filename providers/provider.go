// Package providers contains text-generation provider implementations for Quill.
//
// Each provider is implemented in its own subpackage (e.g., providers/openai).
// Providers implement the core.Provider interface and register a factory so
// that tools such as the CLI can create them by name.
//
// # Provider Interface
//
// All providers must implement core.Provider:
//
//	type Provider interface {
//	    ID() string
//	    Complete(ctx context.Context, req *CompletionRequest) (*GenerationResult, error)
//	    Edit(ctx context.Context, req *EditRequest) (*GenerationResult, error)
//	    StreamComplete(ctx context.Context, req *CompletionRequest) (*CompletionStream, error)
//	}
//
// # Concurrency
//
// Providers SHOULD be safe for concurrent calls. If a provider cannot be
// concurrent-safe, it MUST document this limitation.
//
// # Credentials
//
// A provider without an API token MUST fail every operation with
// core.ErrNoCredential before sending anything, streaming included.
//
// # Streaming
//
// StreamComplete returns a *CompletionStream (not a raw channel) to carry
// errors and the final result consistently. Providers MUST:
//   - Close all channels (Ch, Err, Final) when finished
//   - Terminate promptly on context cancellation
//   - Send at most one error on Err
//   - Send exactly one result on Final on normal completion, none otherwise
//   - Never reconnect a stream after a connection error
package providers

import "github.com/petal-labs/quill/core"

// Re-export core types for convenience.
// Provider implementations can import just the providers package.
type (
	// Provider is the interface that text-generation providers must implement.
	Provider = core.Provider

	// ModelID is a string identifier for a model.
	ModelID = core.ModelID

	// CompletionRequest represents a request to a completion model.
	CompletionRequest = core.CompletionRequest

	// EditRequest represents a request to an edit model.
	EditRequest = core.EditRequest

	// GenerationResult is a one-shot completion or edit response.
	GenerationResult = core.GenerationResult

	// GenerationChunk is one decoded unit of model output.
	GenerationChunk = core.GenerationChunk

	// CompletionStream represents a streaming response from a provider.
	CompletionStream = core.CompletionStream

	// StreamResult is the accumulated result of a completed stream.
	StreamResult = core.StreamResult

	// TokenUsage tracks token consumption for a request.
	TokenUsage = core.TokenUsage

	// ProviderError represents an error returned by a provider.
	ProviderError = core.ProviderError
)

// Re-export sentinel errors.
var (
	ErrUnauthorized  = core.ErrUnauthorized
	ErrRateLimited   = core.ErrRateLimited
	ErrBadRequest    = core.ErrBadRequest
	ErrNotFound      = core.ErrNotFound
	ErrServer        = core.ErrServer
	ErrNetwork       = core.ErrNetwork
	ErrDecode        = core.ErrDecode
	ErrNoCredential  = core.ErrNoCredential
	ErrStream        = core.ErrStream
	ErrModelRequired = core.ErrModelRequired
)
