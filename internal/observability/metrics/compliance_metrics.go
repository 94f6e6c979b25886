package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	OutcomeCompliant    = "compliant"
	OutcomeNonCompliant = "non_compliant"
)

const (
	WriteReasonDeadlineExceeded     = "deadline_exceeded"
	WriteReasonDBLockTimeout        = "db_lock_timeout"
	WriteReasonSerializationFailure = "serialization_failure"
	WriteReasonUniqueViolation      = "unique_violation"
	WriteReasonUnknown              = "unknown"
)

// ComplianceMetrics captures the health of HACCP record keeping: how often
// measurements fall outside their limits and how many follow-ups were opened.
type ComplianceMetrics struct {
	outcomes          *prometheus.CounterVec
	correctiveActions *prometheus.CounterVec
	stockDeductions   *prometheus.CounterVec
	writeRetries      *prometheus.CounterVec
	reportDuration    *prometheus.HistogramVec
}

var (
	complianceMetricsOnce sync.Once
	complianceMetrics     *ComplianceMetrics
)

// Compliance returns the singleton compliance metrics registry.
func Compliance() *ComplianceMetrics {
	return ComplianceWithConfig(Config{})
}

// ComplianceWithConfig returns the singleton compliance metrics registry using config labels.
func ComplianceWithConfig(cfg Config) *ComplianceMetrics {
	complianceMetricsOnce.Do(func() {
		complianceMetrics = newComplianceMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return complianceMetrics
}

func newComplianceMetrics(registerer prometheus.Registerer, cfg Config) *ComplianceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "haccp"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "haccp_compliance_outcomes_total",
		Help:        "Evaluated records by source and compliance result.",
		ConstLabels: constLabels,
	}, []string{"source", "result"})
	correctiveActions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "haccp_corrective_actions_created_total",
		Help:        "Corrective actions opened automatically by source and priority.",
		ConstLabels: constLabels,
	}, []string{"source", "priority"})
	stockDeductions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "haccp_stock_deductions_total",
		Help:        "Material stock deductions by policy and result.",
		ConstLabels: constLabels,
	}, []string{"policy", "result"})
	writeRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "haccp_write_retries_total",
		Help:        "Retried writes by operation and low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"operation", "reason"})
	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "haccp_report_render_duration_seconds",
		Help:        "Time spent rendering PDF and XLSX documents.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"report", "format"})

	registerer.MustRegister(
		outcomes,
		correctiveActions,
		stockDeductions,
		writeRetries,
		reportDuration,
	)

	return &ComplianceMetrics{
		outcomes:          outcomes,
		correctiveActions: correctiveActions,
		stockDeductions:   stockDeductions,
		writeRetries:      writeRetries,
		reportDuration:    reportDuration,
	}
}

// IncOutcome records a single compliance evaluation.
func (m *ComplianceMetrics) IncOutcome(source string, compliant bool) {
	if m == nil || m.outcomes == nil {
		return
	}
	result := OutcomeNonCompliant
	if compliant {
		result = OutcomeCompliant
	}
	m.outcomes.WithLabelValues(source, result).Inc()
}

// IncCorrectiveAction records an automatically opened corrective action.
func (m *ComplianceMetrics) IncCorrectiveAction(source, priority string) {
	if m == nil || m.correctiveActions == nil {
		return
	}
	m.correctiveActions.WithLabelValues(source, priority).Inc()
}

// IncStockDeduction records the result of a material deduction.
func (m *ComplianceMetrics) IncStockDeduction(policy, result string) {
	if m == nil || m.stockDeductions == nil {
		return
	}
	m.stockDeductions.WithLabelValues(policy, result).Inc()
}

// IncWriteRetry records a retried write with its classified cause.
func (m *ComplianceMetrics) IncWriteRetry(operation string, err error) {
	if m == nil || m.writeRetries == nil {
		return
	}
	m.writeRetries.WithLabelValues(operation, ClassifyWriteReason(err)).Inc()
}

// ObserveReport records how long a report took to render.
func (m *ComplianceMetrics) ObserveReport(report, format string, duration time.Duration) {
	if m == nil || m.reportDuration == nil {
		return
	}
	m.reportDuration.WithLabelValues(report, format).Observe(duration.Seconds())
}

// ClassifyWriteReason maps database write errors to low-cardinality reasons.
func ClassifyWriteReason(err error) string {
	if err == nil {
		return WriteReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return WriteReasonDeadlineExceeded
	}
	if hasPGCode(err, "55P03") {
		return WriteReasonDBLockTimeout
	}
	if hasPGCode(err, "40001") {
		return WriteReasonSerializationFailure
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPGCode(err, "23505") {
		return WriteReasonUniqueViolation
	}
	return WriteReasonUnknown
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
