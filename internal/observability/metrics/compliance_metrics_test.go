package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifyWriteReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: WriteReasonDeadlineExceeded},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: WriteReasonDBLockTimeout},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: WriteReasonSerializationFailure},
		{name: "unique_violation", err: gorm.ErrDuplicatedKey, want: WriteReasonUniqueViolation},
		{name: "unique_violation_pg", err: &pgconn.PgError{Code: "23505"}, want: WriteReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: WriteReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyWriteReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIncOutcomeSplitsByResult(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newComplianceMetrics(registry, Config{ServiceName: "haccp", Environment: "test"})

	metrics.IncOutcome("temperature_reading", true)
	metrics.IncOutcome("temperature_reading", false)
	metrics.IncOutcome("temperature_reading", false)

	if got := testutil.ToFloat64(metrics.outcomes.WithLabelValues("temperature_reading", OutcomeNonCompliant)); got != 2 {
		t.Fatalf("expected 2 non-compliant outcomes, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.outcomes.WithLabelValues("temperature_reading", OutcomeCompliant)); got != 1 {
		t.Fatalf("expected 1 compliant outcome, got %v", got)
	}
}

func TestNilComplianceMetricsIsSafe(t *testing.T) {
	var metrics *ComplianceMetrics
	metrics.IncOutcome("audit_record", false)
	metrics.IncCorrectiveAction("audit_record", "HIGH")
	metrics.IncStockDeduction("skip", "skipped")
	metrics.IncWriteRetry("curing_batch_number", gorm.ErrDuplicatedKey)
}
