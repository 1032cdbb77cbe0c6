package openai

import (
	"net/http"

	"github.com/petal-labs/quill/providers/internal/normalize"
)

func newAPIError(status int, header http.Header, body []byte) error {
	return normalize.APIError(providerID, status, header, body)
}

func newNetworkError(err error) error {
	return normalize.NetworkError(providerID, err)
}

func newDecodeError(err error) error {
	return normalize.DecodeError(providerID, err)
}

func newNoCredentialError() error {
	return normalize.NoCredentialError(providerID)
}

// normalizeStreamError classifies a transport error seen while streaming.
func normalizeStreamError(err error) error {
	return normalize.StreamError(providerID, err)
}
