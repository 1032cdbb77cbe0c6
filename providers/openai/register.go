package openai

import (
	"github.com/petal-labs/quill/core"
	"github.com/petal-labs/quill/providers"
)

func init() {
	providers.Register(providerID, func(apiKey string, opts providers.Options) core.Provider {
		var o []Option
		if opts.BaseURL != "" {
			o = append(o, WithBaseURL(opts.BaseURL))
		}
		if opts.Logger != nil {
			o = append(o, WithLogger(opts.Logger))
		}
		return New(apiKey, o...)
	})
}
