package core

import "time"

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, tracing, etc.
//
// # Security Considerations
//
// Event types are designed to NEVER include sensitive data:
//   - API tokens are NEVER included (held separately as core.Credential)
//   - Prompts, instructions, and edit inputs are NEVER included
//   - Generated text is NEVER included
//   - Only operational metadata is exposed (provider, operation, model, timing, token counts)
//
// Never add fields that could contain tokens, prompts, or model output.
type TelemetryHook interface {
	// OnRequestStart is called when a request to a provider begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a request completes. For streams this is
	// when the stream terminates, not when the connection opens.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Provider  string    // Provider identifier (e.g., "openai")
	Operation Operation // complete, edit, or stream_complete
	Model     ModelID   // Model being called
	Start     time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	Provider     string
	Operation    Operation
	Model        ModelID
	Start        time.Time
	End          time.Time
	Usage        TokenUsage   // Zero for streams; the API does not report usage there
	FinishReason FinishReason // First choice's reason, when reported
	Err          error        // Error if the request failed, nil on success
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

var _ TelemetryHook = NoopTelemetryHook{}
