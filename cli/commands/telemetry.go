package commands

import (
	"log/slog"

	"github.com/petal-labs/quill/core"
)

// logTelemetry reports request timing through the CLI logger.
type logTelemetry struct {
	logger *slog.Logger
}

func (h logTelemetry) OnRequestStart(e core.RequestStartEvent) {
	h.logger.Debug("request started", "provider", e.Provider, "operation", e.Operation, "model", e.Model)
}

func (h logTelemetry) OnRequestEnd(e core.RequestEndEvent) {
	attrs := []any{
		"provider", e.Provider,
		"operation", e.Operation,
		"model", e.Model,
		"duration", e.Duration(),
	}
	if e.FinishReason.IsSet() {
		attrs = append(attrs, "finish_reason", e.FinishReason.String())
	}
	if e.Usage.TotalTokens > 0 {
		attrs = append(attrs, "total_tokens", e.Usage.TotalTokens)
	}
	if e.Err != nil {
		h.logger.Debug("request failed", append(attrs, "error", e.Err)...)
		return
	}
	h.logger.Debug("request finished", attrs...)
}
