// Package tracing is the optional OpenTelemetry collaborator for the
// orchestrator (SPEC_FULL.md Ambient Stack): one span per phase dispatch
// and one per tool execution, child-spanned under a turn-level root span.
// A nil *Tracer disables tracing — each Start method checks for a nil
// receiver and returns the context's current span unchanged.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Tracer wraps an otel tracer under a fixed instrumentation name.
type Tracer struct {
	tracer oteltrace.Tracer
}

// New wraps the global otel TracerProvider under the given instrumentation
// name (typically the module path).
func New(instrumentationName string) *Tracer {
	return &Tracer{tracer: otel.Tracer(instrumentationName)}
}

// StartTurn opens the turn-level root span. Callers must End() the
// returned span when the turn finishes (success or error).
func (t *Tracer) StartTurn(ctx context.Context, sessionID string) (context.Context, oteltrace.Span) {
	if t == nil {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "agentcore.turn", oteltrace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
}

// StartPhase opens a child span for one phase dispatch.
func (t *Tracer) StartPhase(ctx context.Context, phaseKind string) (context.Context, oteltrace.Span) {
	if t == nil {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "agentcore.phase."+phaseKind)
}

// StartToolExecution opens a child span for one tool invocation.
func (t *Tracer) StartToolExecution(ctx context.Context, toolName string) (context.Context, oteltrace.Span) {
	if t == nil {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "agentcore.tool."+toolName, oteltrace.WithAttributes(
		attribute.String("tool_name", toolName),
	))
}
