// Package telemetry supplies clue/OpenTelemetry-backed implementations of
// the interpreter's narrow Logger and Tracer surfaces, so a driver can wire
// real observability without the interpreter package depending on either
// library directly.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"

	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter"
)

// ClueLogger delegates to goa.design/clue/log. It logs against
// context.Background(), so formatting and debug settings a caller installs
// with log.Context on its own context are not applied to these lines.
type ClueLogger struct{}

func (ClueLogger) Info(msg string, kv ...any) {
	log.Info(context.Background(), fielders(msg, kv)...)
}

func (ClueLogger) Warn(msg string, kv ...any) {
	fielders := append(fielders(msg, kv), log.KV{K: "severity", V: "warning"})
	log.Warn(context.Background(), fielders...)
}

func fielders(msg string, kv []any) []log.Fielder {
	out := []log.Fielder{log.KV{K: "msg", V: msg}}
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		out = append(out, log.KV{K: k, V: kv[i+1]})
	}
	return out
}

// ClueTracer starts one OTEL span per tool call, named after the tool, and
// records the policy outcome and any error on it before closing.
type ClueTracer struct {
	tracer trace.Tracer
}

func NewClueTracer() *ClueTracer {
	return &ClueTracer{tracer: otel.Tracer("camel-prompt-injection/interpreter")}
}

func (t *ClueTracer) StartToolCall(ctx context.Context, toolName string) (context.Context, interpreter.SpanEnd) {
	newCtx, span := t.tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(attribute.String("camel.tool", toolName)))
	return newCtx, func(allowed bool, err error) {
		span.SetAttributes(attribute.Bool("camel.policy_allowed", allowed))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
