package sse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// maxErrorBodySize bounds how much of a non-2xx response body is kept.
const maxErrorBodySize = 64 * 1024

// ConnectionErrorAction tells an EventSource what to do after a connection
// fails or ends.
type ConnectionErrorAction int

const (
	// ActionProceed reconnects after a backoff delay.
	ActionProceed ConnectionErrorAction = iota
	// ActionShutdown stops the EventSource.
	ActionShutdown
)

func (a ConnectionErrorAction) String() string {
	if a == ActionShutdown {
		return "shutdown"
	}
	return "proceed"
}

// ConnectionErrorHandler decides whether to reconnect. It receives the
// connection error, or io.EOF when the server closed the stream cleanly.
type ConnectionErrorHandler func(err error) ConnectionErrorAction

// ShutdownOnError never reconnects.
func ShutdownOnError(error) ConnectionErrorAction {
	return ActionShutdown
}

// ProceedOnError always reconnects.
func ProceedOnError(error) ConnectionErrorAction {
	return ActionProceed
}

// StatusError is reported when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sse: unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Config configures an EventSource.
type Config struct {
	// URL is the stream endpoint (required).
	URL string

	// Method is the HTTP method. Defaults to GET.
	Method string

	// Header is sent with every request. Accept and Cache-Control default to
	// text/event-stream and no-cache.
	Header http.Header

	// Body is sent with every request, if non-nil.
	Body []byte

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// ConnectionErrorHandler defaults to ProceedOnError.
	ConnectionErrorHandler ConnectionErrorHandler

	// Backoff controls reconnect delays. The zero value means
	// DefaultBackoff. A "retry:" field from the server replaces BaseDelay.
	Backoff Backoff

	// LastEventID is sent as Last-Event-ID on the first request.
	LastEventID string

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// EventSource maintains one SSE connection and reports to a Handler.
type EventSource struct {
	cfg     Config
	handler Handler
	logger  *slog.Logger

	mu          sync.Mutex
	started     bool
	stopped     bool
	cancel      context.CancelFunc
	lastEventID string

	done chan struct{}
}

// New creates an EventSource. Nothing happens until Start is called.
func New(cfg Config, h Handler) *EventSource {
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.ConnectionErrorHandler == nil {
		cfg.ConnectionErrorHandler = ProceedOnError
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Backoff == (Backoff{}) {
		cfg.Backoff = DefaultBackoff()
	}
	cfg.Backoff = cfg.Backoff.withDefaults()

	return &EventSource{
		cfg:         cfg,
		handler:     h,
		logger:      cfg.Logger.With("url", cfg.URL),
		lastEventID: cfg.LastEventID,
		done:        make(chan struct{}),
	}
}

// Start connects in a background goroutine. It returns immediately. Calling
// Start more than once, or after Stop, does nothing.
func (es *EventSource) Start(ctx context.Context) {
	es.mu.Lock()
	if es.started || es.stopped {
		es.mu.Unlock()
		return
	}
	es.started = true
	ctx, es.cancel = context.WithCancel(ctx)
	es.mu.Unlock()

	go es.run(ctx)
}

// Stop closes the connection and prevents reconnects. It does not wait for
// the background goroutine; use Done for that. No handler callback starts
// after Stop returns. Stop is safe to call from a Handler callback.
func (es *EventSource) Stop() {
	es.mu.Lock()
	if es.stopped {
		es.mu.Unlock()
		return
	}
	es.stopped = true
	cancel := es.cancel
	started := es.started
	es.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if !started {
		close(es.done)
	}
}

// Done is closed when the EventSource has stopped for good.
func (es *EventSource) Done() <-chan struct{} {
	return es.done
}

// LastEventID returns the most recent event ID received.
func (es *EventSource) LastEventID() string {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.lastEventID
}

func (es *EventSource) isStopped() bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.stopped
}

func (es *EventSource) run(ctx context.Context) {
	defer close(es.done)

	backoff := es.cfg.Backoff
	attempt := 0
	for {
		opened, retry, err := es.connect(ctx)
		if es.isStopped() {
			return
		}
		if ctx.Err() != nil {
			es.handler.OnError(ctx.Err())
			return
		}
		if opened {
			attempt = 0
		}
		if retry > 0 {
			backoff.BaseDelay = time.Duration(retry) * time.Millisecond
		}

		if err == nil {
			// Clean close; OnClosed already ran.
			if es.cfg.ConnectionErrorHandler(io.EOF) == ActionShutdown {
				es.logger.Debug("stream ended, shutting down")
				return
			}
		} else {
			action := es.cfg.ConnectionErrorHandler(err)
			es.logger.Debug("connection error", "error", err, "action", action.String())
			es.handler.OnError(err)
			if action == ActionShutdown {
				return
			}
		}
		if es.isStopped() {
			return
		}

		delay := backoff.Delay(attempt)
		attempt++
		es.logger.Debug("reconnecting", "delay", delay, "attempt", attempt)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			if !es.isStopped() {
				es.handler.OnError(ctx.Err())
			}
			return
		case <-timer.C:
		}
	}
}

// connect performs one request and pumps events until the body ends. It
// reports whether the connection opened and the last server retry value.
// A nil error means the server closed the stream cleanly.
func (es *EventSource) connect(ctx context.Context) (opened bool, retry int, err error) {
	var body io.Reader
	if es.cfg.Body != nil {
		body = bytes.NewReader(es.cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, es.cfg.Method, es.cfg.URL, body)
	if err != nil {
		return false, 0, err
	}
	for key, values := range es.cfg.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/event-stream")
	}
	if req.Header.Get("Cache-Control") == "" {
		req.Header.Set("Cache-Control", "no-cache")
	}
	if id := es.LastEventID(); id != "" {
		req.Header.Set("Last-Event-ID", id)
	}

	es.logger.Debug("connecting", "method", es.cfg.Method)
	resp, err := es.cfg.HTTPClient.Do(req)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return false, 0, &StatusError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       respBody,
		}
	}

	if es.isStopped() {
		return false, 0, nil
	}
	es.handler.OnOpened()

	reader := NewReader(resp.Body, func(comment string) {
		if !es.isStopped() {
			es.handler.OnComment(comment)
		}
	})
	for {
		ev, err := reader.Next()
		if err != nil {
			return true, reader.Retry(), err
		}
		if ev == nil {
			if !es.isStopped() {
				es.handler.OnClosed()
			}
			return true, reader.Retry(), nil
		}
		if ev.ID != "" {
			es.mu.Lock()
			es.lastEventID = ev.ID
			es.mu.Unlock()
		}
		if es.isStopped() {
			return true, reader.Retry(), nil
		}
		es.handler.OnMessage(ev.EventType(), ev.Data)
	}
}

// IsStatusError reports whether err is a StatusError and returns it.
func IsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
