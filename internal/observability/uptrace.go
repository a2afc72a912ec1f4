package observability

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"

	"github.com/riskibarqy/match-predictor/internal/config"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// pipelineLabels describes how this process runs the prediction pipeline.
// Traces carry them as resource attributes and profiles as tags.
func pipelineLabels(cfg config.Config) map[string]string {
	return map[string]string{
		"store.driver":     cfg.StoreDriver,
		"listener.enabled": strconv.FormatBool(cfg.ListenerEnabled),
		"webhook.enabled":  strconv.FormatBool(cfg.WebhookEnabled),
		"scoring.workers":  strconv.Itoa(cfg.ScoringWorkers),
	}
}

func resourceAttributes(cfg config.Config) []attribute.KeyValue {
	labels := pipelineLabels(cfg)
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for _, key := range slices.Sorted(maps.Keys(labels)) {
		attrs = append(attrs, attribute.String(key, labels[key]))
	}
	return attrs
}

// InitUptrace exports traces, and optionally logs, for the match pipeline.
// The returned shutdown flushes pending spans before closing the exporters.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.UptraceEnabled || cfg.UptraceDSN == "" {
		logging.SetMirror(nil)
		logger.Info("trace export disabled", "enabled", cfg.UptraceEnabled, "dsn_set", cfg.UptraceDSN != "")
		return func(context.Context) error { return nil }, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(resourceAttributes(cfg)...),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	mirror := logging.MirrorFunc(nil)
	if cfg.UptraceLogsEnabled {
		mirror = newLogMirror(cfg.ServiceVersion)
	}
	logging.SetMirror(mirror)

	logger.Info("trace export enabled",
		"service_name", cfg.ServiceName,
		"store_driver", cfg.StoreDriver,
		"listener_enabled", cfg.ListenerEnabled,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)

	return func(ctx context.Context) error {
		logging.SetMirror(nil)
		flushErr := uptrace.ForceFlush(ctx)
		return errors.Join(flushErr, uptrace.Shutdown(ctx))
	}, nil
}
