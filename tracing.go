// Copyright (c) Microsoft. All rights reserved.

package agentkit

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope reported on every span.
const tracerName = "github.com/microsoft/agentkit"

func tracer() trace.Tracer { return otel.Tracer(tracerName) }

// TracingMiddleware returns an [AgentMiddleware] that records each agent run
// as an OpenTelemetry span. The function invocation loop adds a child span
// per tool call, so a traced run shows the full tool-calling tree.
//
// Spans go to the globally registered tracer provider; with none registered
// this middleware is a no-op. See the telemetry package for OTLP setup.
func TracingMiddleware() AgentMiddleware {
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
			ctx, span := tracer().Start(ctx, "agent.run",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("operation.type", "agent_run"),
				attribute.Int("agent.message_count", len(req.Messages)),
			)
			if req.Thread != nil {
				span.SetAttributes(attribute.String("agent.thread_id", req.Thread.ID()))
			}

			resp, err := next(ctx, req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}

			span.SetAttributes(
				attribute.Int("agent.response_messages", len(resp.Messages)),
				attribute.Int("gen_ai.usage.input_tokens", resp.Usage.InputTokens),
				attribute.Int("gen_ai.usage.output_tokens", resp.Usage.OutputTokens),
			)
			return resp, nil
		}
	}
}

// traceToolCall records a single tool invocation as a child span of the
// current trace context.
func traceToolCall(ctx context.Context, name, args string, fn func(ctx context.Context) (any, error)) (any, error) {
	ctx, span := tracer().Start(ctx, "tool.invoke")
	defer span.End()

	span.SetAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.arguments", args),
	)

	result, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}
