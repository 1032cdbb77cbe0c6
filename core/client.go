package core

import (
	"context"
	"slices"
	"time"
)

// DefaultMaxTokens is the completion token budget used when none is set.
const DefaultMaxTokens = 16

// Provider is the interface that text-generation providers must implement.
// Providers SHOULD be safe for concurrent calls.
type Provider interface {
	// ID returns the provider identifier (e.g., "openai").
	ID() string

	// Complete sends a one-shot completion request.
	Complete(ctx context.Context, req *CompletionRequest) (*GenerationResult, error)

	// Edit sends a one-shot edit request.
	Edit(ctx context.Context, req *EditRequest) (*GenerationResult, error)

	// StreamComplete opens a streaming completion. Connection failures after
	// this returns arrive on the stream's Err channel.
	StreamComplete(ctx context.Context, req *CompletionRequest) (*CompletionStream, error)
}

// Client is the main entry point for sending requests to a provider.
// Client is safe for concurrent use.
type Client struct {
	provider  Provider
	telemetry TelemetryHook
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given provider and options.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:  p,
		telemetry: NoopTelemetryHook{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Completion returns a CompletionBuilder for the given model.
func (c *Client) Completion(model ModelID) *CompletionBuilder {
	return &CompletionBuilder{
		client: c,
		req: CompletionRequest{
			Model:     model,
			MaxTokens: DefaultMaxTokens,
		},
	}
}

// Edit returns an EditBuilder for the given model.
func (c *Client) Edit(model ModelID) *EditBuilder {
	return &EditBuilder{
		client: c,
		req:    EditRequest{Model: model},
	}
}

// CompletionBuilder provides a fluent API for completion requests.
// CompletionBuilder is NOT thread-safe; use Clone to share a base configuration.
type CompletionBuilder struct {
	client *Client
	req    CompletionRequest
}

// Prompt sets the prompt text.
func (b *CompletionBuilder) Prompt(p string) *CompletionBuilder {
	b.req.Prompt = p
	return b
}

// MaxTokens sets the token budget for the completion.
func (b *CompletionBuilder) MaxTokens(n int) *CompletionBuilder {
	b.req.MaxTokens = n
	return b
}

// Stop sets the stop sequences.
func (b *CompletionBuilder) Stop(seqs ...string) *CompletionBuilder {
	b.req.Stop = seqs
	return b
}

// Echo asks the API to echo the prompt in the output.
func (b *CompletionBuilder) Echo(v bool) *CompletionBuilder {
	b.req.Echo = v
	return b
}

// Clone returns an independent copy of the builder.
func (b *CompletionBuilder) Clone() *CompletionBuilder {
	clone := *b
	clone.req.Stop = slices.Clone(b.req.Stop)
	return &clone
}

// Request returns a copy of the request being built.
func (b *CompletionBuilder) Request() CompletionRequest {
	req := b.req
	req.Stop = slices.Clone(b.req.Stop)
	return req
}

func (b *CompletionBuilder) validate() error {
	if b.req.Model == "" {
		return ErrModelRequired
	}
	if b.req.Prompt == "" {
		return ErrPromptRequired
	}
	return nil
}

// GetResponse sends the completion and waits for the full result.
func (b *CompletionBuilder) GetResponse(ctx context.Context) (*GenerationResult, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	req := b.Request()
	return b.client.do(OperationComplete, req.Model, func() (*GenerationResult, error) {
		return b.client.provider.Complete(ctx, &req)
	})
}

// Stream opens a streaming completion.
func (b *CompletionBuilder) Stream(ctx context.Context) (*CompletionStream, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	req := b.Request()

	start := time.Now()
	providerID := b.client.provider.ID()
	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Provider:  providerID,
		Operation: OperationStreamComplete,
		Model:     req.Model,
		Start:     start,
	})

	stream, err := b.client.provider.StreamComplete(ctx, &req)
	if err != nil {
		b.client.telemetry.OnRequestEnd(RequestEndEvent{
			Provider:  providerID,
			Operation: OperationStreamComplete,
			Model:     req.Model,
			Start:     start,
			End:       time.Now(),
			Err:       err,
		})
		return nil, err
	}

	return wrapStreamWithTelemetry(stream, b.client.telemetry, providerID, req.Model, start), nil
}

// EditBuilder provides a fluent API for edit requests.
// EditBuilder is NOT thread-safe.
type EditBuilder struct {
	client *Client
	req    EditRequest
}

// Instruction sets the edit instruction, e.g. "Fix the spelling mistakes".
func (b *EditBuilder) Instruction(s string) *EditBuilder {
	b.req.Instruction = s
	return b
}

// Input sets the text to edit. Defaults to "".
func (b *EditBuilder) Input(s string) *EditBuilder {
	b.req.Input = s
	return b
}

// Request returns a copy of the request being built.
func (b *EditBuilder) Request() EditRequest {
	return b.req
}

func (b *EditBuilder) validate() error {
	if b.req.Model == "" {
		return ErrModelRequired
	}
	if b.req.Instruction == "" {
		return ErrInstructionRequired
	}
	return nil
}

// GetResponse sends the edit and waits for the result.
func (b *EditBuilder) GetResponse(ctx context.Context) (*GenerationResult, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	req := b.req
	return b.client.do(OperationEdit, req.Model, func() (*GenerationResult, error) {
		return b.client.provider.Edit(ctx, &req)
	})
}

// do runs a one-shot call with telemetry. No retry is attempted.
func (c *Client) do(op Operation, model ModelID, call func() (*GenerationResult, error)) (*GenerationResult, error) {
	start := time.Now()
	providerID := c.provider.ID()

	c.telemetry.OnRequestStart(RequestStartEvent{
		Provider:  providerID,
		Operation: op,
		Model:     model,
		Start:     start,
	})

	resp, err := call()

	end := RequestEndEvent{
		Provider:  providerID,
		Operation: op,
		Model:     model,
		Start:     start,
		End:       time.Now(),
		Err:       err,
	}
	if resp != nil {
		end.Usage = resp.Usage
		end.FinishReason = resp.FinishReason()
	}
	c.telemetry.OnRequestEnd(end)

	return resp, err
}

// wrapStreamWithTelemetry forwards Err and Final so that telemetry is emitted
// when the stream terminates. Ch is passed through untouched.
func wrapStreamWithTelemetry(
	stream *CompletionStream,
	hook TelemetryHook,
	provider string,
	model ModelID,
	start time.Time,
) *CompletionStream {
	finalCh := make(chan *StreamResult, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(finalCh)
		defer close(errCh)

		var result *StreamResult
		var streamErr error

		errs, finals := stream.Err, stream.Final
		for errs != nil || finals != nil {
			select {
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				if err != nil && streamErr == nil {
					streamErr = err
					errCh <- err
				}
			case res, ok := <-finals:
				if !ok {
					finals = nil
					continue
				}
				if res != nil && result == nil {
					result = res
					finalCh <- res
				}
			}
		}

		end := RequestEndEvent{
			Provider:  provider,
			Operation: OperationStreamComplete,
			Model:     model,
			Start:     start,
			End:       time.Now(),
			Err:       streamErr,
		}
		if result != nil {
			end.FinishReason = result.FinishReason
		}
		hook.OnRequestEnd(end)
	}()

	return NewCompletionStream(stream.Ch, errCh, finalCh, stream.Close)
}
