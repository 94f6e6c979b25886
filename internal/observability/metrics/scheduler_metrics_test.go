package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSchedulerErrorReasons(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewSchedulerMetrics(registry, Config{ServiceName: "haccp", Environment: "test"})

	metrics.IncJobError("document_reviews", context.DeadlineExceeded)
	metrics.IncJobError("document_reviews", &pgconn.PgError{Code: "55P03"})
	metrics.IncJobError("document_reviews", errors.New("boom"))
	metrics.IncJobError("document_reviews", nil)

	for reason, want := range map[string]float64{
		SchedulerJobReasonDeadlineExceeded: 1,
		SchedulerJobReasonDB:               1,
		SchedulerJobReasonUnknown:          1,
	} {
		if got := testutil.ToFloat64(metrics.jobErrors.WithLabelValues("document_reviews", reason)); got != want {
			t.Fatalf("reason %s: expected %v, got %v", reason, want, got)
		}
	}
}

func TestSetBacklogOverwrites(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewSchedulerMetrics(registry, Config{})

	metrics.SetBacklog("corrective_action_overdue", 4)
	metrics.SetBacklog("corrective_action_overdue", 1)

	if got := testutil.ToFloat64(metrics.backlog.WithLabelValues("corrective_action_overdue")); got != 1 {
		t.Fatalf("expected backlog 1, got %v", got)
	}
}

func TestNilSchedulerMetricsIsSafe(t *testing.T) {
	var metrics *SchedulerMetrics
	metrics.IncJobRun("x")
	metrics.IncJobTimeout("x")
	metrics.IncJobSkipped("x")
	metrics.IncJobError("x", errors.New("boom"))
	metrics.ObserveRunLoopLag(0)
	metrics.SetBacklog("x", 1)
}
