package openai

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/petal-labs/quill/core"
)

// DefaultAPIKeyEnvVar is the environment variable name for the OpenAI API key.
const DefaultAPIKeyEnvVar = "OPENAI_API_KEY"

// providerID identifies this provider in errors, logs, and the registry.
const providerID = "openai"

// ErrAPIKeyNotFound is returned when the API key environment variable is not set.
var ErrAPIKeyNotFound = errors.New("openai: OPENAI_API_KEY environment variable not set")

// ErrClosed is the cause reported to streams stopped by Close.
var ErrClosed = errors.New("openai: provider closed")

// NewFromEnv creates a new OpenAI provider using the OPENAI_API_KEY environment variable.
// This is a convenience factory for quick setup:
//
//	provider, err := openai.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := core.NewClient(provider)
func NewFromEnv(opts ...Option) (*OpenAI, error) {
	apiKey := os.Getenv(DefaultAPIKeyEnvVar)
	if apiKey == "" {
		return nil, ErrAPIKeyNotFound
	}
	return New(apiKey, opts...), nil
}

// OpenAI is a text-generation provider for the OpenAI completions and edits
// APIs. OpenAI is safe for concurrent use.
type OpenAI struct {
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	streams map[*core.StreamSession]struct{}
}

// New creates a new OpenAI provider with the given API key and options. An
// empty key is accepted; every request then fails with core.ErrNoCredential
// before anything is sent.
func New(apiKey string, opts ...Option) *OpenAI {
	cfg := Config{
		APIKey:     core.NewCredential(apiKey),
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &OpenAI{
		config:  cfg,
		logger:  cfg.Logger.With("provider", providerID),
		streams: make(map[*core.StreamSession]struct{}),
	}
}

// ID returns the provider identifier.
func (p *OpenAI) ID() string {
	return providerID
}

// checkCredential fails fast when no token is configured.
func (p *OpenAI) checkCredential() error {
	if p.config.APIKey.IsEmpty() {
		return newNoCredentialError()
	}
	return nil
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *OpenAI) buildHeaders() http.Header {
	headers := make(http.Header)

	// Required headers
	headers.Set("Authorization", p.config.APIKey.AuthorizationHeader())
	headers.Set("Content-Type", "application/json")

	if p.config.OrgID != "" {
		headers.Set("OpenAI-Organization", p.config.OrgID)
	}
	if p.config.ProjectID != "" {
		headers.Set("OpenAI-Project", p.config.ProjectID)
	}

	// Copy any extra headers
	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

func (p *OpenAI) trackStream(s *core.StreamSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streams[s] = struct{}{}
}

func (p *OpenAI) releaseStream(s *core.StreamSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.streams, s)
}

// OpenStreams returns the number of streams whose connection is still held.
func (p *OpenAI) OpenStreams() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.streams)
}

// Close fails every open stream with a stream error wrapping ErrClosed and
// releases its connection. The provider remains usable afterwards.
func (p *OpenAI) Close() error {
	p.mu.Lock()
	open := make([]*core.StreamSession, 0, len(p.streams))
	for s := range p.streams {
		open = append(open, s)
	}
	p.mu.Unlock()

	for _, s := range open {
		s.Cancel(ErrClosed)
	}
	return nil
}

// Compile-time check that OpenAI implements Provider.
var _ core.Provider = (*OpenAI)(nil)
