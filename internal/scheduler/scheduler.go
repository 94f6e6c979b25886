package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	documentdomain "github.com/smallbiznis/haccp/internal/document/domain"
	obsmetrics "github.com/smallbiznis/haccp/internal/observability/metrics"
	"github.com/smallbiznis/haccp/internal/ratelimit"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobOverdueCorrectiveActions = "overdue_corrective_actions"
	JobDocumentReviews          = "document_reviews"
	JobStaleTemperaturePoints   = "stale_temperature_points"
)

const lockKeyPrefix = "scheduler:"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	TemperatureSvc temperaturedomain.Service
	DocumentSvc    documentdomain.Service
	Locker         *ratelimit.Locker            `optional:"true"`
	Metrics        *obsmetrics.SchedulerMetrics `optional:"true"`
	Config         Config                       `optional:"true"`
}

// Scheduler periodically sweeps the records for work that needs a person's
// attention: overdue corrective actions, documents due for review and
// temperature points nobody has measured recently.
type Scheduler struct {
	db             *gorm.DB
	log            *zap.Logger
	cfg            Config
	genID          *snowflake.Node
	clock          clock.Clock
	temperatureSvc temperaturedomain.Service
	documentSvc    documentdomain.Service
	locker         *ratelimit.Locker
	metrics        *obsmetrics.SchedulerMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.TemperatureSvc == nil || p.DocumentSvc == nil {
		return nil, ErrInvalidConfig
	}
	m := p.Metrics
	if m == nil {
		m = obsmetrics.Scheduler()
	}
	return &Scheduler{
		db:             p.DB,
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            p.Config.withDefaults(),
		genID:          p.GenID,
		clock:          p.Clock,
		temperatureSvc: p.TemperatureSvc,
		documentSvc:    p.DocumentSvc,
		locker:         p.Locker,
		metrics:        m,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	release, ok := s.acquire(ctx, name, timeout)
	if !ok {
		s.metrics.IncJobSkipped(name)
		return nil
	}
	defer release()

	ctx, run, owner := s.ensureJobRun(ctx, name)
	if owner {
		s.logJobStart(ctx, run)
	}
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if owner {
		if err != nil {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		s.metrics.IncJobTimeout(name)
	}
	s.metrics.IncJobError(name, err)
	if isTimeout {
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// acquire takes the cluster-wide lock for a job when redis is configured.
// Without redis every instance runs every job.
func (s *Scheduler) acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool) {
	if s.locker == nil {
		return func() {}, true
	}
	lease, err := s.locker.Acquire(ctx, lockKeyPrefix+name, ttl)
	switch {
	case errors.Is(err, ratelimit.ErrLockHeld):
		return nil, false
	case err != nil:
		s.log.Warn("scheduler lock unavailable, running unlocked", zap.String("job", name), zap.Error(err))
		return func() {}, true
	}
	return func() {
		if err := lease.Release(context.Background()); err != nil {
			s.log.Warn("failed to release scheduler lock", zap.String("job", name), zap.Error(err))
		}
	}, true
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{JobOverdueCorrectiveActions, s.OverdueCorrectiveActionsJob},
		{JobDocumentReviews, s.DocumentReviewsJob},
		{JobStaleTemperaturePoints, s.StaleTemperaturePointsJob},
	}

	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, s.cfg.JobTimeout, job.Run))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now()

	for {
		s.metrics.ObserveRunLoopLag(s.clock.Now().Sub(nextRun))
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(strings.TrimSpace(enabled), jobName) {
			return true
		}
	}
	return false
}
