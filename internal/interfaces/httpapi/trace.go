package httpapi

import (
	"context"

	"github.com/riskibarqy/match-predictor/internal/platform/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Only handler entry points get spans; middleware and helpers ride on them.
var handlerSpans = tracing.NewSpanner("internal/interfaces/httpapi", "httpapi.Handler.")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return handlerSpans.Start(ctx, name)
}
