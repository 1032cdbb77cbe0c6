package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/petal-labs/quill/core"
	"github.com/petal-labs/quill/providers/internal/normalize"
)

// API endpoint paths, relative to BaseURL.
const (
	completionsPath = "/v1/completions"
	editsPath       = "/v1/edits"
)

// Complete sends a one-shot completion request.
func (p *OpenAI) Complete(ctx context.Context, req *core.CompletionRequest) (*core.GenerationResult, error) {
	if err := p.checkCredential(); err != nil {
		return nil, err
	}
	return p.post(ctx, completionsPath, buildCompletionRequest(req, false))
}

// Edit sends a one-shot edit request.
func (p *OpenAI) Edit(ctx context.Context, req *core.EditRequest) (*core.GenerationResult, error) {
	if err := p.checkCredential(); err != nil {
		return nil, err
	}
	return p.post(ctx, editsPath, editRequest{
		Instruction: req.Instruction,
		Model:       string(req.Model),
		Input:       req.Input,
	})
}

// buildCompletionRequest maps a core request to the wire body.
func buildCompletionRequest(req *core.CompletionRequest, stream bool) completionRequest {
	return completionRequest{
		Prompt:    req.Prompt,
		Model:     string(req.Model),
		MaxTokens: req.MaxTokens,
		Stream:    stream,
		Stop:      req.Stop,
		Echo:      req.Echo,
	}
}

// post sends a JSON body and decodes the generation in the response.
func (p *OpenAI) post(ctx context.Context, path string, payload any) (*core.GenerationResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newDecodeError(err)
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	url := p.config.BaseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}

	for key, values := range p.buildHeaders() {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	p.logger.Debug("sending request", "path", path)
	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		p.logger.Debug("request failed", "path", path, "status", resp.StatusCode,
			"request_id", resp.Header.Get(normalize.RequestIDHeader))
		return nil, newAPIError(resp.StatusCode, resp.Header, respBody)
	}

	result, err := core.DecodeGeneration(respBody)
	if err != nil {
		return nil, newDecodeError(err)
	}
	return result, nil
}
