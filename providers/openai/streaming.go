package openai

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/petal-labs/quill/core"
	"github.com/petal-labs/quill/sse"
)

// StreamComplete opens a streaming completion. It returns once the request
// is prepared; the connection is made in the background and any failure to
// connect arrives on the stream's Err channel. Streams never reconnect.
func (p *OpenAI) StreamComplete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionStream, error) {
	if err := p.checkCredential(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildCompletionRequest(req, true))
	if err != nil {
		return nil, newDecodeError(err)
	}

	headers := p.buildHeaders()
	headers.Set("Accept", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")

	session := core.NewStreamSession(ctx, core.SessionConfig{
		Provider: providerID,
		Logger:   p.config.Logger,
	})

	es := sse.New(sse.Config{
		URL:                    p.config.BaseURL + completionsPath,
		Method:                 http.MethodPost,
		Header:                 headers,
		Body:                   body,
		HTTPClient:             p.config.HTTPClient,
		ConnectionErrorHandler: sse.ShutdownOnError,
		Logger:                 p.logger,
	}, streamHandler{session})

	// Attach runs the release at once if ctx was already done.
	p.trackStream(session)
	session.Attach(func() {
		es.Stop()
		p.releaseStream(session)
	})
	es.Start(ctx)

	return session.Stream(), nil
}

// streamHandler classifies transport errors before they reach the session.
type streamHandler struct {
	*core.StreamSession
}

func (h streamHandler) OnError(err error) {
	h.StreamSession.OnError(normalizeStreamError(err))
}
