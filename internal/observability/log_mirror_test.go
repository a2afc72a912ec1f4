package observability

import (
	"errors"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestIsQuietRequestLog(t *testing.T) {
	t.Parallel()

	if !isQuietRequestLog("http_request", []any{"http_path", "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if !isQuietRequestLog("http_request", []any{"http_method", "GET", "http_path", "/metrics"}) {
		t.Fatalf("expected metrics scrape log to be skipped")
	}
	if isQuietRequestLog("http_request", []any{"http_path", "/v1/leaderboard"}) {
		t.Fatalf("did not expect api request log to be skipped")
	}
	if isQuietRequestLog("match status changed", []any{"http_path", "/healthz"}) {
		t.Fatalf("did not expect non-request log to be skipped")
	}
}

func TestLogAttributes(t *testing.T) {
	t.Parallel()

	attrs := logAttributes([]any{"match_id", int64(42), "attempt", 2, "error", errors.New("timeout"), "dangling"})
	if len(attrs) != 4 {
		t.Fatalf("unexpected attribute count: got=%d want=4", len(attrs))
	}
	if attrs[0].Key != "match_id" || attrs[0].Value.AsInt64() != 42 {
		t.Fatalf("unexpected match_id attribute: %+v", attrs[0])
	}
	if attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute: %+v", attrs[1])
	}
	if attrs[2].Value.AsString() != "timeout" {
		t.Fatalf("unexpected error attribute: %+v", attrs[2])
	}
	if attrs[3].Key != "dangling" || attrs[3].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected dangling attribute: %+v", attrs[3])
	}
}

func TestLogValue_Nested(t *testing.T) {
	t.Parallel()

	v := logValue(map[string]any{
		"users":  []string{"alice", "bob"},
		"scored": int32(3),
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got=%s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 || items[0].Key != "scored" || items[0].Value.AsInt64() != 3 {
		t.Fatalf("unexpected map items: %+v", items)
	}
	if items[1].Value.Kind() != otellog.KindSlice || len(items[1].Value.AsSlice()) != 2 {
		t.Fatalf("unexpected users slice: %+v", items[1])
	}
}

func TestToOTelSeverity(t *testing.T) {
	t.Parallel()

	if toOTelSeverity(zapcore.WarnLevel) != otellog.SeverityWarn {
		t.Fatalf("unexpected warn severity")
	}
	if toOTelSeverity(zapcore.ErrorLevel) != otellog.SeverityError {
		t.Fatalf("unexpected error severity")
	}
}
