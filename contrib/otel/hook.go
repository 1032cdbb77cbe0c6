// Package otel exports Quill request telemetry as OpenTelemetry spans.
//
//	hook := otel.NewHook(otel.WithTracerProvider(tp))
//	client := core.NewClient(provider, core.WithTelemetry(hook))
//
// One span is recorded per request when it ends. Streams are recorded when
// they terminate, so the span covers the whole stream. Prompts, inputs, and
// generated text are never attached.
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/quill/core"
)

const instrumentationName = "github.com/petal-labs/quill/contrib/otel"

// Hook is a core.TelemetryHook that records spans.
type Hook struct {
	tracer trace.Tracer
}

// Option configures a Hook.
type Option func(*config)

type config struct {
	provider trace.TracerProvider
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.provider = tp
	}
}

// NewHook creates a telemetry hook.
func NewHook(opts ...Option) *Hook {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetTracerProvider()
	}
	return &Hook{tracer: cfg.provider.Tracer(instrumentationName)}
}

// OnRequestStart does nothing; the span is recorded with its start time when
// the request ends.
func (h *Hook) OnRequestStart(core.RequestStartEvent) {}

// OnRequestEnd records a span for the finished request.
func (h *Hook) OnRequestEnd(e core.RequestEndEvent) {
	attrs := []attribute.KeyValue{
		attribute.String("gen_ai.system", e.Provider),
		attribute.String("gen_ai.operation.name", string(e.Operation)),
		attribute.String("gen_ai.request.model", string(e.Model)),
	}
	if e.FinishReason.IsSet() {
		attrs = append(attrs, attribute.StringSlice("gen_ai.response.finish_reasons", []string{e.FinishReason.String()}))
	}
	if e.Usage.TotalTokens > 0 {
		attrs = append(attrs,
			attribute.Int("gen_ai.usage.input_tokens", e.Usage.PromptTokens),
			attribute.Int("gen_ai.usage.output_tokens", e.Usage.CompletionTokens),
		)
	}

	_, span := h.tracer.Start(context.Background(), spanName(e),
		trace.WithTimestamp(e.Start),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End(trace.WithTimestamp(e.End))
}

func spanName(e core.RequestEndEvent) string {
	if e.Model == "" {
		return string(e.Operation)
	}
	return string(e.Operation) + " " + string(e.Model)
}

var _ core.TelemetryHook = (*Hook)(nil)
