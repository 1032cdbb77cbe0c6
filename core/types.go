// Package core provides the Quill SDK client and types.
package core

import (
	"encoding/json"
	"fmt"
)

// ModelID is a string identifier for a model.
// Using string avoids coupling to provider-specific enums.
type ModelID string

// Operation names the API operation a request performs.
type Operation string

const (
	OperationComplete       Operation = "complete"
	OperationEdit           Operation = "edit"
	OperationStreamComplete Operation = "stream_complete"
)

// FinishReason explains why generation stopped for a choice.
// The zero value means no reason was reported: generation is still in
// progress (streaming) or the API omitted it.
type FinishReason string

const (
	FinishReasonStop   FinishReason = "stop"
	FinishReasonLength FinishReason = "length"
)

// IsSet reports whether a finish reason was reported.
func (r FinishReason) IsSet() bool {
	return r != ""
}

// String returns the reason, or "unknown" when unset.
func (r FinishReason) String() string {
	if r == "" {
		return "unknown"
	}
	return string(r)
}

// UnmarshalJSON accepts only the closed set of reasons. JSON null leaves the
// reason unset.
func (r *FinishReason) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch FinishReason(s) {
	case FinishReasonStop, FinishReasonLength:
		*r = FinishReason(s)
		return nil
	default:
		return fmt.Errorf("unknown finish_reason %q", s)
	}
}

// Choice is one candidate completion within a GenerationChunk.
type Choice struct {
	Index        int          `json:"index"`
	Text         string       `json:"text"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// GenerationChunk is one decoded unit of model output. In streaming mode each
// SSE message carries one chunk with a text fragment; a one-shot response is a
// single chunk holding the full text.
type GenerationChunk struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

// Text returns the first choice's text, or "" if there are no choices.
func (c *GenerationChunk) Text() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Text
}

// FinishReason returns the first choice's finish reason, if any.
func (c *GenerationChunk) FinishReason() FinishReason {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].FinishReason
}

// TokenUsage reports token consumption as returned by the API.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult is the decoded body of a one-shot completion or edit call.
type GenerationResult struct {
	GenerationChunk
	Usage TokenUsage `json:"usage"`
}

// CompletionRequest is a provider-agnostic completion request.
type CompletionRequest struct {
	Model     ModelID  `json:"model"`
	Prompt    string   `json:"prompt"`
	MaxTokens int      `json:"max_tokens"`
	Stop      []string `json:"stop,omitempty"`
	Echo      bool     `json:"echo,omitempty"`
}

// EditRequest is a provider-agnostic edit request.
type EditRequest struct {
	Model       ModelID `json:"model"`
	Instruction string  `json:"instruction"`
	Input       string  `json:"input"`
}

// StreamResult is delivered once when a stream completes normally.
type StreamResult struct {
	ID           string
	Model        string
	Text         string       // Concatenation of choices[0].text across chunks
	FinishReason FinishReason // Unset when the server never reported one
	Chunks       int
}
