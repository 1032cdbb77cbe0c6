package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/petal-labs/quill/cli/config"
	"github.com/petal-labs/quill/core"
	"github.com/petal-labs/quill/providers"

	// Registers the openai provider.
	_ "github.com/petal-labs/quill/providers/openai"
)

const defaultProviderID = "openai"

// defaultProviderFactory builds a registered provider. The API token comes
// from the environment; a missing token is reported by the first request.
func defaultProviderFactory(providerID string, cfg *config.Config, logger *slog.Logger) (core.Provider, error) {
	if !providers.IsRegistered(providerID) {
		return nil, fmt.Errorf("unsupported provider: %s (available: %v)", providerID, providers.List())
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	opts := providers.Options{Logger: logger}
	if pc := cfg.GetProvider(providerID); pc != nil {
		opts.BaseURL = pc.BaseURL
	}
	return providers.Create(providerID, cfg.APIKey(providerID, envVarForProvider(providerID)), opts)
}

func envVarForProvider(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}
