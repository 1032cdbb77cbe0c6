// Package core provides the Quill SDK client and types for text-generation
// providers.
//
// Quill talks to completion-style APIs: a prompt goes in, generated text comes
// out, either in one response or as a stream of server-sent events.
//
// # Client and Provider
//
// The primary entry point is [Client], which wraps a [Provider] and adds
// request validation, telemetry, and a fluent builder API:
//
//	provider := openai.New(os.Getenv("OPENAI_API_KEY"))
//	client := core.NewClient(provider,
//	    core.WithTelemetry(myTelemetryHook),
//	)
//
// # Completions and Edits
//
//	resp, err := client.Completion("text-davinci-003").
//	    Prompt("Large language models are best understood by").
//	    MaxTokens(32).
//	    GetResponse(ctx)
//
//	edited, err := client.Edit("text-davinci-edit-001").
//	    Instruction("Fix the spelling mistakes").
//	    Input("My nam is Adam").
//	    GetResponse(ctx)
//
// # Streaming
//
// [CompletionBuilder.Stream] opens a [CompletionStream]:
//
//	stream, err := client.Completion(model).Prompt("Count to three:").Stream(ctx)
//	if err != nil {
//	    return err
//	}
//	for chunk := range stream.Ch {
//	    fmt.Print(chunk.Text())
//	}
//
// The [CompletionStream] type provides three channels:
//   - Ch: Emits decoded chunks in order
//   - Err: Emits at most one error
//   - Final: Emits the accumulated [StreamResult] on normal completion
//
// Use [DrainStream] to accumulate a whole stream, or [CompletionStream.All]
// to range over chunks and the terminal error together.
//
// A stream ends normally when the server sends the [DONE] sentinel. The
// result's FinishReason is the first reason the server reported, or unset
// ("unknown") if it never reported one. Payloads that cannot be decoded are
// dropped without failing the stream. A connection failure after the stream
// opened arrives on Err as an [ErrStream] error; connections are never retried.
//
// The streaming state machine is [StreamSession]. Providers create one per
// call, attach it to a transport as the event handler, and return its
// [StreamSession.Stream].
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//   - [ErrNoCredential]: No API token configured (returned before any request)
//   - [ErrNetwork]: Network connectivity issues
//   - [ErrDecode]: Response body did not match the expected shape
//   - [ErrStream]: A failure on an already-open stream
//   - [ErrUnauthorized], [ErrRateLimited], [ErrBadRequest], [ErrNotFound], [ErrServer]:
//     HTTP status classes
//   - [ErrModelRequired], [ErrPromptRequired], [ErrInstructionRequired]: validation
//
// Use errors.Is to check error types:
//
//	if errors.Is(err, core.ErrStream) && errors.Is(err, context.Canceled) {
//	    // The caller cancelled the stream
//	}
//
// # Thread Safety
//
// [Client] is safe for concurrent use across goroutines.
// [CompletionBuilder] and [EditBuilder] are NOT thread-safe.
// [CompletionStream] channels may be read by one goroutine at a time.
package core
