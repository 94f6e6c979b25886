package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SchedulerJobReasonDeadlineExceeded = "deadline_exceeded"
	SchedulerJobReasonDB               = "db"
	SchedulerJobReasonUnknown          = "unknown"
)

// SchedulerMetrics tracks the housekeeping sweeps and the backlog they find.
type SchedulerMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobTimeouts *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	jobSkipped  *prometheus.CounterVec
	runLoopLag  prometheus.Observer
	backlog     *prometheus.GaugeVec
}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// Scheduler returns the singleton scheduler metrics registry.
func Scheduler() *SchedulerMetrics {
	return SchedulerWithConfig(Config{})
}

// SchedulerWithConfig returns the singleton scheduler metrics registry using config labels.
func SchedulerWithConfig(cfg Config) *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return schedulerMetrics
}

// NewSchedulerMetrics registers a fresh set of collectors, used by tests
// that need an isolated registry.
func NewSchedulerMetrics(registerer prometheus.Registerer, cfg Config) *SchedulerMetrics {
	return newSchedulerMetrics(registerer, cfg)
}

func newSchedulerMetrics(registerer prometheus.Registerer, cfg Config) *SchedulerMetrics {
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

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "haccp_scheduler_job_runs_total",
		Help:        "Scheduler job runs by name.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "haccp_scheduler_job_duration_seconds",
		Help:        "Scheduler job latency.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: constLabels,
	}, []string{"job"})
	jobTimeouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "haccp_scheduler_job_timeouts_total",
		Help:        "Scheduler jobs that hit their deadline.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "haccp_scheduler_job_errors_total",
		Help:        "Scheduler job errors by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"job", "reason"})
	jobSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "haccp_scheduler_job_skipped_total",
		Help:        "Scheduler jobs skipped because another instance held the lock.",
		ConstLabels: constLabels,
	}, []string{"job"})
	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "haccp_scheduler_run_loop_lag_seconds",
		Help:        "Delay between the planned and actual start of a sweep.",
		Buckets:     []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		ConstLabels: constLabels,
	})
	backlog := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "haccp_compliance_backlog",
		Help:        "Records needing attention found by the last sweep.",
		ConstLabels: constLabels,
	}, []string{"kind"})

	registerer.MustRegister(
		jobRuns,
		jobDuration,
		jobTimeouts,
		jobErrors,
		jobSkipped,
		runLoopLag,
		backlog,
	)

	return &SchedulerMetrics{
		jobRuns:     jobRuns,
		jobDuration: jobDuration,
		jobTimeouts: jobTimeouts,
		jobErrors:   jobErrors,
		jobSkipped:  jobSkipped,
		runLoopLag:  runLoopLag,
		backlog:     backlog,
	}
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *SchedulerMetrics) IncJobTimeout(job string) {
	if m == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, classifySchedulerError(err)).Inc()
}

func (m *SchedulerMetrics) IncJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveRunLoopLag(lag time.Duration) {
	if m == nil || lag <= 0 {
		return
	}
	m.runLoopLag.Observe(lag.Seconds())
}

// SetBacklog publishes the size of one kind of outstanding work.
func (m *SchedulerMetrics) SetBacklog(kind string, count int) {
	if m == nil {
		return
	}
	m.backlog.WithLabelValues(kind).Set(float64(count))
}

func classifySchedulerError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return SchedulerJobReasonDeadlineExceeded
	case ClassifyWriteReason(err) != WriteReasonUnknown:
		return SchedulerJobReasonDB
	default:
		return SchedulerJobReasonUnknown
	}
}
