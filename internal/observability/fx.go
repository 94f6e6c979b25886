package observability

import (
	"github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/observability/metrics"
	"github.com/smallbiznis/haccp/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the zap logger, the tracer and meter providers and the
// prometheus collectors used by the HTTP layer, the compliance observer and
// the scheduler.
var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		newLogger,
		newTracerProvider,
		func(cfg Config) metrics.Config { return cfg.metrics() },
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
		metrics.ComplianceWithConfig,
		metrics.SchedulerWithConfig,
	),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)

func newLogger(lc fx.Lifecycle, cfg Config) (*zap.Logger, error) {
	debug := cfg.Debug()
	return logger.New(lc, logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		Debug:               debug,
		IncludeCaller:       true,
		IncludeStackOnError: debug,
	})
}

func newTracerProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*sdktrace.TracerProvider, error) {
	return tracing.NewProvider(lc, tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      cfg.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}, log)
}

func (c Config) metrics() metrics.Config {
	return metrics.Config{
		Enabled:          c.OtelEnabled,
		ExporterEndpoint: c.OtelExporterEndpoint,
		ExporterProtocol: c.OtelExporterProtocol,
		ServiceName:      c.ServiceName,
		Environment:      c.Environment,
	}
}
