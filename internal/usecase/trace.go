package usecase

import (
	"context"

	"github.com/riskibarqy/match-predictor/internal/platform/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseSpans = tracing.NewSpanner("internal/usecase", "usecase.")

func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return usecaseSpans.Start(ctx, name, attrs...)
}
