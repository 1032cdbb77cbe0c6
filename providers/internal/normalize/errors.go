// Package normalize maps HTTP and transport failures onto core.ProviderError.
package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/petal-labs/quill/core"
	"github.com/petal-labs/quill/sse"
)

// RequestIDHeader carries the server-assigned request identifier.
const RequestIDHeader = "x-request-id"

// maxPlainMessage bounds how much of a non-JSON error body becomes the message.
const maxPlainMessage = 200

// errorEnvelope is the {"error":{...}} body returned on failed requests.
// code is a string upstream but some compatible servers send a number or null.
type errorEnvelope struct {
	Error *struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

// APIError builds the error for a response with a status of 400 or above.
func APIError(provider string, status int, header http.Header, body []byte) error {
	pe := &core.ProviderError{
		Provider:  provider,
		Status:    status,
		RequestID: header.Get(RequestIDHeader),
		Err:       StatusSentinel(status),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		pe.Message = env.Error.Message
		pe.Code = rawCode(env.Error.Code)
		if pe.Code == "" {
			pe.Code = env.Error.Type
		}
	} else {
		pe.Message = plainMessage(body)
	}

	if pe.Message == "" {
		pe.Message = http.StatusText(status)
	}
	return pe
}

// StreamError classifies a failure reported by the event source. Status
// errors carry the API error body, context errors pass through, and anything
// else is a network failure.
func StreamError(provider string, err error) error {
	if se, ok := sse.IsStatusError(err); ok {
		return APIError(provider, se.StatusCode, se.Header, se.Body)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return NetworkError(provider, err)
}

// NetworkError wraps a transport failure.
func NetworkError(provider string, err error) error {
	return &core.ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Err:      core.ErrNetwork,
		Cause:    err,
	}
}

// DecodeError wraps a body that could not be encoded or decoded.
func DecodeError(provider string, err error) error {
	return &core.ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Err:      core.ErrDecode,
		Cause:    err,
	}
}

// NoCredentialError reports a request refused because no API token is set.
func NoCredentialError(provider string) error {
	return &core.ProviderError{
		Provider: provider,
		Message:  "no API token configured",
		Err:      core.ErrNoCredential,
	}
}

// StatusSentinel maps an HTTP status code to a core sentinel error.
func StatusSentinel(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return core.ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return core.ErrUnauthorized
	case http.StatusNotFound:
		return core.ErrNotFound
	case http.StatusTooManyRequests:
		return core.ErrRateLimited
	default:
		return core.ErrServer
	}
}

func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func plainMessage(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" || strings.HasPrefix(msg, "{") || strings.HasPrefix(msg, "<") {
		return ""
	}
	if len(msg) > maxPlainMessage {
		msg = msg[:maxPlainMessage] + "..."
	}
	return msg
}
