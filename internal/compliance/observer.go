package compliance

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/observability/metrics"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Observer is the single place where evaluated outcomes turn into
// corrective actions.
type Observer interface {
	// Report records the outcome and, when it is non-compliant, inserts one
	// corrective action using tx so it commits with the triggering write.
	Report(ctx context.Context, tx *gorm.DB, outcome Outcome) (*cadomain.CorrectiveAction, error)
	// Config returns the current thresholds.
	Config() config.ComplianceConfig
}

type ObserverParams struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Compliance *config.ComplianceConfigHolder
	Repo       cadomain.Repository
	Metrics    *metrics.ComplianceMetrics `optional:"true"`
	OtelMetric *metrics.Metrics           `optional:"true"`
}

type observer struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	compliance *config.ComplianceConfigHolder
	repo       cadomain.Repository
	metrics    *metrics.ComplianceMetrics
	otel       *metrics.Metrics
}

func NewObserver(p ObserverParams) Observer {
	return &observer{
		log:        p.Log.Named("compliance.observer"),
		genID:      p.GenID,
		clock:      p.Clock,
		compliance: p.Compliance,
		repo:       p.Repo,
		metrics:    p.Metrics,
		otel:       p.OtelMetric,
	}
}

func (o *observer) Config() config.ComplianceConfig {
	return o.compliance.Get()
}

func (o *observer) Report(ctx context.Context, tx *gorm.DB, outcome Outcome) (*cadomain.CorrectiveAction, error) {
	o.metrics.IncOutcome(string(outcome.Source), outcome.Compliant)
	if outcome.Compliant {
		return nil, nil
	}

	priority := outcome.Priority
	if priority == "" {
		priority = cadomain.PriorityHigh
	}

	now := o.clock.Now().UTC()
	sourceType := string(outcome.Source)
	action := &cadomain.CorrectiveAction{
		ID:          o.genID.Generate(),
		Title:       strings.TrimSpace(outcome.Title),
		Description: strings.TrimSpace(outcome.Description),
		Status:      cadomain.StatusOpen,
		Priority:    priority,
		SourceType:  &sourceType,
		CCPID:       outcome.CCPID,
		CreatedBy:   usercontext.RecordedBy(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if action.Title == "" {
		action.Title = "Niezgodność: " + sourceType
	}
	if outcome.SourceID != 0 {
		sourceID := outcome.SourceID
		action.SourceID = &sourceID
	}
	if cause := strings.TrimSpace(outcome.Cause); cause != "" {
		action.Cause = &cause
	}
	if days := o.compliance.Get().CorrectiveAction.DueDaysFor(string(priority)); days > 0 {
		due := now.AddDate(0, 0, days)
		action.DueDate = &due
	}

	if err := o.repo.Create(ctx, tx, action); err != nil {
		return nil, err
	}

	o.metrics.IncCorrectiveAction(sourceType, string(priority))
	o.otel.RecordCorrectiveAction(ctx, sourceType, string(priority))
	obslogger.WithContext(ctx, o.log).Info("corrective action opened",
		zap.String("source_type", sourceType),
		zap.String("source_id", outcome.SourceID.String()),
		zap.String("priority", string(priority)),
		zap.String("corrective_action_id", action.ID.String()),
	)
	return action, nil
}
