package core

import (
	"context"
	"iter"
	"strings"
)

// CompletionStream is the consumer view of a streaming completion.
//
// Channel Rules:
//   - Ch, Err, and Final are all closed when the stream ends
//   - Ch emits chunks in arrival order; no chunk follows termination
//   - Err emits at most one error (a stream error after the connection opened)
//   - Final emits exactly once on normal completion and never after an error
//   - Close abandons the stream: the connection is released and neither Err
//     nor Final receives a value
type CompletionStream struct {
	// Ch emits decoded chunks in order. Closed when the stream ends.
	Ch <-chan *GenerationChunk

	// Err emits at most one error, then is closed.
	Err <-chan error

	// Final emits the accumulated result once on normal completion, then is closed.
	Final <-chan *StreamResult

	cancel func()
}

// NewCompletionStream assembles a stream from its channels. cancel is invoked
// by Close and may be nil.
func NewCompletionStream(ch <-chan *GenerationChunk, errCh <-chan error, final <-chan *StreamResult, cancel func()) *CompletionStream {
	return &CompletionStream{Ch: ch, Err: errCh, Final: final, cancel: cancel}
}

// Close abandons the stream. It is safe to call more than once and after the
// stream has ended.
func (s *CompletionStream) Close() {
	if s != nil && s.cancel != nil {
		s.cancel()
	}
}

// All returns an iterator over the stream's chunks. If the stream fails, the
// last pair yielded carries a nil chunk and the error. Breaking out of the
// loop closes the stream.
//
//	for chunk, err := range stream.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(chunk.Text())
//	}
func (s *CompletionStream) All() iter.Seq2[*GenerationChunk, error] {
	return func(yield func(*GenerationChunk, error) bool) {
		for chunk := range s.Ch {
			if !yield(chunk, nil) {
				s.Close()
				return
			}
		}
		for err := range s.Err {
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// DrainStream consumes the stream and returns the accumulated result.
// Blocks until the stream completes or ctx is cancelled.
//
// Behavior:
//  1. Read all chunks from Ch, folding choices[0].text into the output
//  2. Wait for Err to close; a stream error is returned as-is
//  3. Take Final if present; otherwise build the result from the fold
func DrainStream(ctx context.Context, s *CompletionStream) (*StreamResult, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var accumulated strings.Builder
	var last *GenerationChunk
	var reason FinishReason
	count := 0

	for chunk := range readChunks(ctx, s.Ch) {
		accumulated.WriteString(chunk.Text())
		if !reason.IsSet() {
			reason = chunk.FinishReason()
		}
		last = chunk
		count++
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Err is always closed when the stream ends, so this wait is bounded.
waitErr:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err, ok := <-s.Err:
			if !ok {
				break waitErr
			}
			if err != nil {
				return nil, err
			}
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res, ok := <-s.Final:
		if ok && res != nil {
			return res, nil
		}
	}

	res := &StreamResult{
		Text:         accumulated.String(),
		FinishReason: reason,
		Chunks:       count,
	}
	if last != nil {
		res.ID = last.ID
		res.Model = last.Model
	}
	return res, nil
}

// readChunks yields chunks from ch until it closes or ctx ends.
func readChunks(ctx context.Context, ch <-chan *GenerationChunk) iter.Seq[*GenerationChunk] {
	return func(yield func(*GenerationChunk) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-ch:
				if !ok || !yield(chunk) {
					return
				}
			}
		}
	}
}
