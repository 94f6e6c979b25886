package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures both the OTLP meter provider and the const labels of the
// prometheus collectors.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the OTLP counters pushed to the collector. They mirror the
// prometheus compliance series for plants that scrape nothing.
type Metrics struct {
	activity          metric.Int64Counter
	correctiveActions metric.Int64Counter
	stockDeductions   metric.Int64Counter
	logins            metric.Int64Counter
}

// NewProvider installs the global meter provider. Without a collector a noop
// provider is used.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(30*time.Second))),
	)
	otel.SetMeterProvider(provider)

	lc.Append(fx.Hook{
		OnStop: provider.Shutdown,
	})
	log.Info("otlp metrics exporter started",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "haccp"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	counters := []struct {
		name string
		desc string
		dst  *metric.Int64Counter
	}{
		{"haccp_activity_total", "Mutations recorded in the activity log.", &m.activity},
		{"haccp_corrective_actions_total", "Corrective actions opened automatically.", &m.correctiveActions},
		{"haccp_stock_deductions_total", "Raw material deductions by policy and result.", &m.stockDeductions},
		{"haccp_login_attempts_total", "Login attempts by result.", &m.logins},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

// RecordActivity counts an activity log entry by target type.
func (m *Metrics) RecordActivity(ctx context.Context, targetType string) {
	if m == nil {
		return
	}
	add(ctx, m.activity, attribute.String("target_type", targetType))
}

func (m *Metrics) RecordCorrectiveAction(ctx context.Context, sourceType, priority string) {
	if m == nil {
		return
	}
	add(ctx, m.correctiveActions,
		attribute.String("source_type", sourceType),
		attribute.String("priority", priority),
	)
}

func (m *Metrics) RecordStockDeduction(ctx context.Context, policy, result string) {
	if m == nil {
		return
	}
	add(ctx, m.stockDeductions,
		attribute.String("policy", policy),
		attribute.String("result", result),
	)
}

func (m *Metrics) RecordLogin(ctx context.Context, result string) {
	if m == nil {
		return
	}
	add(ctx, m.logins, attribute.String("result", result))
}

func add(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	}
	return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
}

// FilterAttributes keeps only the low-cardinality label keys and trims their
// values. Identifiers such as user_id or batch_number never become labels.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		switch attr.Key {
		case "target_type", "source_type", "priority", "policy", "result", "method", "status_code":
		default:
			continue
		}
		if attr.Value.Type() == attribute.STRING {
			attr = attr.Key.String(strings.TrimSpace(attr.Value.AsString()))
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
