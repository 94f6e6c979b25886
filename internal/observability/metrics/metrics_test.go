package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributes(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("source_type", " temperature_reading "),
		attribute.String("user_id", "456"),
		attribute.String("batch_number", "20240312-001"),
		attribute.String("priority", "HIGH"),
	)

	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.String("source_type", "temperature_reading"), attrs[0])
	assert.Equal(t, attribute.String("priority", "HIGH"), attrs[1])
}

func TestNewRegistersCounters(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	m.RecordActivity(context.Background(), "temperature_reading")
	m.RecordLogin(context.Background(), "success")
	m.RecordStockDeduction(context.Background(), "strict", "deducted")
	m.RecordCorrectiveAction(context.Background(), "lab_test", "HIGH")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordActivity(context.Background(), "x")
	m.RecordLogin(context.Background(), "x")
	m.RecordStockDeduction(context.Background(), "x", "y")
	m.RecordCorrectiveAction(context.Background(), "x", "y")
}
