// Package tracing starts child spans for the service layers and names the
// span attributes shared across them.
package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationRoot = "github.com/riskibarqy/match-predictor/"

const (
	AttrMatchID     = attribute.Key("match.id")
	AttrMatchStatus = attribute.Key("match.status")
	AttrUsername    = attribute.Key("prediction.user")
	AttrPending     = attribute.Key("scoring.pending")
	AttrScored      = attribute.Key("scoring.scored")
	AttrFailed      = attribute.Key("scoring.failed")
)

var noopSpan = trace.SpanFromContext(context.Background())

// Spanner creates spans for one layer. Spans are only started under a valid
// parent, so timer-driven passes and filtered routes stay untraced. A non-empty
// prefix restricts spans to names carrying it.
type Spanner struct {
	tracer trace.Tracer
	prefix string
}

// NewSpanner returns a Spanner whose tracer is named after layer, a path
// relative to the module root such as "internal/usecase".
func NewSpanner(layer, prefix string) Spanner {
	return Spanner{
		tracer: otel.Tracer(instrumentationRoot + strings.Trim(layer, "/")),
		prefix: prefix,
	}
}

func (s Spanner) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !s.Traces(name) {
		return ctx, noopSpan
	}
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	if len(attrs) == 0 {
		return s.tracer.Start(ctx, name)
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Traces reports whether name is eligible for a span in this layer.
func (s Spanner) Traces(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return s.prefix == "" || strings.HasPrefix(name, s.prefix)
}

func MatchID(id int64) attribute.KeyValue {
	return AttrMatchID.Int64(id)
}

func Username(user string) attribute.KeyValue {
	return AttrUsername.String(user)
}
