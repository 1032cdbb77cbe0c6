package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultStreamBuffer is the default capacity of a session's chunk channel.
const DefaultStreamBuffer = 100

// errAbandoned marks a session the consumer closed. It is never surfaced.
var errAbandoned = errors.New("stream abandoned")

// SessionConfig configures a StreamSession.
type SessionConfig struct {
	// Provider identifies the provider in errors and logs.
	Provider string

	// Logger receives lifecycle and misuse diagnostics. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// Buffer is the chunk channel capacity. Defaults to DefaultStreamBuffer.
	Buffer int

	// OnChunk, if set, is called with every decoded chunk before it is emitted.
	OnChunk func(chunk *GenerationChunk)

	// OnTerminate, if set, is called exactly once after the session
	// terminates. err is nil on normal completion. It runs without the
	// session lock held.
	OnTerminate func(result *StreamResult, err error)
}

// StreamSession owns the lifecycle of one streaming request. It receives
// transport callbacks (OnOpened, OnMessage, OnComment, OnError, OnClosed),
// decodes each payload, accumulates the first choice's text, and exposes the
// chunks as a CompletionStream that completes exactly once.
//
// Callbacks may arrive from any goroutine; they are serialized internally.
// Sessions are single-use.
type StreamSession struct {
	id       string
	provider string
	ctx      context.Context
	logger   *slog.Logger

	onChunk     func(*GenerationChunk)
	onTerminate func(*StreamResult, error)

	// mu serializes transport callbacks and is held while a chunk waits for
	// channel space. stateMu guards the fields read by the accessors so they
	// never block on a slow consumer.
	mu        sync.Mutex
	opened    bool
	detach    func()
	stopWatch func() bool

	stateMu      sync.RWMutex
	terminated   bool
	text         strings.Builder
	lastChunk    *GenerationChunk
	finishReason FinishReason
	chunks       int

	abandon     chan struct{}
	abandonOnce sync.Once

	interrupt     chan struct{}
	interruptOnce sync.Once
	interruptErr  error

	chunkCh chan *GenerationChunk
	errCh   chan error
	finalCh chan *StreamResult
}

// NewStreamSession creates a session bound to ctx. Cancelling ctx terminates
// the session with a stream error wrapping ctx.Err().
func NewStreamSession(ctx context.Context, cfg SessionConfig) *StreamSession {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultStreamBuffer
	}

	s := &StreamSession{
		id:          uuid.NewString(),
		provider:    cfg.Provider,
		ctx:         ctx,
		onChunk:     cfg.OnChunk,
		onTerminate: cfg.OnTerminate,
		abandon:     make(chan struct{}),
		interrupt:   make(chan struct{}),
		chunkCh:     make(chan *GenerationChunk, cfg.Buffer),
		errCh:       make(chan error, 1),
		finalCh:     make(chan *StreamResult, 1),
	}
	s.logger = cfg.Logger.With("provider", cfg.Provider, "session", s.id)

	s.mu.Lock()
	s.stopWatch = context.AfterFunc(ctx, func() {
		s.OnError(ctx.Err())
	})
	s.mu.Unlock()
	return s
}

// ID returns the session identifier used in logs.
func (s *StreamSession) ID() string {
	return s.id
}

// Attach registers the function that releases the underlying transport
// connection. It is called once when the session terminates. If the session
// has already terminated, detach runs immediately.
func (s *StreamSession) Attach(detach func()) {
	s.mu.Lock()
	if !s.isTerminated() {
		s.detach = detach
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// Stream returns the consumer view of the session.
func (s *StreamSession) Stream() *CompletionStream {
	return &CompletionStream{
		Ch:     s.chunkCh,
		Err:    s.errCh,
		Final:  s.finalCh,
		cancel: s.Abandon,
	}
}

// OnOpened is called when the transport connection opens.
func (s *StreamSession) OnOpened() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		s.logger.Warn("stream session opened more than once; sessions are single-use")
	}
	if reason := s.FinishReason(); reason.IsSet() {
		s.logger.Warn("stream opened with an existing finish reason", "finish_reason", reason.String())
	}
	s.opened = true
	s.logger.Debug("stream opened")
}

// OnMessage handles one SSE message in arrival order.
func (s *StreamSession) OnMessage(eventType, data string) {
	s.mu.Lock()
	after := s.handleMessageLocked(eventType, data)
	s.mu.Unlock()
	after()
}

func (s *StreamSession) handleMessageLocked(eventType, data string) func() {
	if s.isTerminated() {
		return noop
	}

	chunk, kind := DecodePayload(data)
	switch kind {
	case PayloadDone:
		return s.finishLocked(nil)

	case PayloadChunk:
		s.stateMu.Lock()
		s.lastChunk = chunk
		s.chunks++
		s.text.WriteString(chunk.Text())
		if !s.finishReason.IsSet() {
			if r := chunk.FinishReason(); r.IsSet() {
				s.finishReason = r
			}
		}
		s.stateMu.Unlock()

		if s.onChunk != nil {
			s.onChunk(chunk)
		}
		return s.emitLocked(chunk)

	default:
		s.logger.Debug("dropping undecodable stream payload", "event", eventType, "bytes", len(data))
		return noop
	}
}

// emitLocked delivers a chunk, giving up if the session is abandoned,
// cancelled, or its context ends while the channel is full.
func (s *StreamSession) emitLocked(chunk *GenerationChunk) func() {
	select {
	case s.chunkCh <- chunk:
		return noop
	case <-s.abandon:
		return s.finishLocked(errAbandoned)
	case <-s.interrupt:
		return s.finishLocked(NewStreamError(s.provider, s.interruptErr))
	case <-s.ctx.Done():
		return s.finishLocked(NewStreamError(s.provider, s.ctx.Err()))
	}
}

// OnComment is called for SSE comment lines.
func (s *StreamSession) OnComment(comment string) {
	s.logger.Debug("stream comment", "comment", comment)
}

// OnError terminates the session with a stream error wrapping err. It is a
// no-op once the session has terminated.
func (s *StreamSession) OnError(err error) {
	s.mu.Lock()
	var after func()
	if s.isTerminated() {
		after = noop
	} else {
		s.logger.Debug("stream error", "error", err)
		after = s.finishLocked(NewStreamError(s.provider, err))
	}
	s.mu.Unlock()
	after()
}

// OnClosed is called when the transport connection closes. A connection
// that closes before the [DONE] sentinel terminates the session with a
// stream error wrapping io.ErrUnexpectedEOF.
func (s *StreamSession) OnClosed() {
	s.mu.Lock()
	after := noop
	if !s.isTerminated() {
		s.logger.Debug("stream closed before completion")
		after = s.finishLocked(NewStreamError(s.provider, io.ErrUnexpectedEOF))
	} else {
		s.logger.Debug("stream closed")
	}
	s.mu.Unlock()
	after()
}

// Cancel terminates the session with a stream error wrapping cause. Unlike
// OnError it does not wait for a full chunk channel to drain.
func (s *StreamSession) Cancel(cause error) {
	s.interruptOnce.Do(func() {
		s.interruptErr = cause
		close(s.interrupt)
	})
	s.OnError(cause)
}

// Abandon stops the session without delivering a result or error. The
// transport connection is released and channels are closed.
func (s *StreamSession) Abandon() {
	s.abandonOnce.Do(func() { close(s.abandon) })
	s.mu.Lock()
	after := s.finishLocked(errAbandoned)
	s.mu.Unlock()
	after()
}

// finishLocked performs the single terminated transition. It returns the
// work that must run after the lock is released.
func (s *StreamSession) finishLocked(err error) func() {
	s.stateMu.Lock()
	if s.terminated {
		s.stateMu.Unlock()
		return noop
	}
	s.terminated = true
	result := s.resultLocked()
	s.stateMu.Unlock()

	switch {
	case err == nil:
		s.logger.Debug("stream finished", "finish_reason", result.FinishReason.String(), "chunks", result.Chunks)
		s.finalCh <- result
	case errors.Is(err, errAbandoned):
		s.logger.Debug("stream abandoned by consumer")
	default:
		s.errCh <- err
	}
	close(s.chunkCh)
	close(s.errCh)
	close(s.finalCh)

	detach := s.detach
	s.detach = nil
	stopWatch := s.stopWatch
	onTerminate := s.onTerminate
	surfaced := err
	if errors.Is(err, errAbandoned) {
		surfaced = nil
	}

	return func() {
		if stopWatch != nil {
			stopWatch()
		}
		if detach != nil {
			detach()
		}
		if onTerminate != nil {
			onTerminate(result, surfaced)
		}
	}
}

func (s *StreamSession) resultLocked() *StreamResult {
	result := &StreamResult{
		Text:         s.text.String(),
		FinishReason: s.finishReason,
		Chunks:       s.chunks,
	}
	if s.lastChunk != nil {
		result.ID = s.lastChunk.ID
		result.Model = s.lastChunk.Model
	}
	return result
}

// Text returns the accumulated first-choice text so far.
func (s *StreamSession) Text() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.text.String()
}

// FinishReason returns the first finish reason observed, if any.
func (s *StreamSession) FinishReason() FinishReason {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.finishReason
}

// LastChunk returns the most recently decoded chunk, or nil.
func (s *StreamSession) LastChunk() *GenerationChunk {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.lastChunk
}

// Terminated reports whether the session has completed or failed.
func (s *StreamSession) Terminated() bool {
	return s.isTerminated()
}

func (s *StreamSession) isTerminated() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.terminated
}

func noop() {}
