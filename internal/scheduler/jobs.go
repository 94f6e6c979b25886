package scheduler

import (
	"context"
	"time"

	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	"go.uber.org/zap"
)

const (
	BacklogCorrectiveActionsOverdue = "corrective_action_overdue"
	BacklogDocumentsReviewOverdue   = "document_review_overdue"
	BacklogDocumentsReviewUpcoming  = "document_review_upcoming"
	BacklogTemperaturePointsStale   = "temperature_point_stale"
)

// OverdueCorrectiveActionsJob reports unfinished corrective actions past their due date.
func (s *Scheduler) OverdueCorrectiveActionsJob(ctx context.Context) error {
	now := s.clock.Now().UTC()

	var overdue []cadomain.CorrectiveAction
	if err := s.db.WithContext(ctx).
		Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", cadomain.StatusCompleted, now).
		Order("due_date asc, id asc").
		Find(&overdue).Error; err != nil {
		return err
	}

	s.metrics.SetBacklog(BacklogCorrectiveActionsOverdue, len(overdue))
	jobRunFromContext(ctx).AddFound(len(overdue))

	log := s.logger(ctx)
	for i, item := range overdue {
		if i >= s.cfg.MaxLoggedRecords {
			break
		}
		log.Warn("corrective action overdue",
			zap.String("corrective_action_id", item.ID.String()),
			zap.String("title", item.Title),
			zap.String("priority", string(item.Priority)),
			zap.String("status", string(item.Status)),
			zap.Time("due_date", item.DueDate.UTC()),
			zap.Duration("overdue_by", now.Sub(*item.DueDate).Truncate(time.Minute)),
		)
	}
	return nil
}

// DocumentReviewsJob reports active documents whose review date has passed
// or falls within the look-ahead window.
func (s *Scheduler) DocumentReviewsJob(ctx context.Context) error {
	now := s.clock.Now().UTC()

	docs, err := s.documentSvc.DueForReview(ctx, now.Add(s.cfg.ReviewLookahead))
	if err != nil {
		return err
	}

	var overdue, upcoming int
	log := s.logger(ctx)
	for _, doc := range docs {
		if doc.ReviewDate == nil {
			continue
		}
		if doc.ReviewDate.Before(now) {
			overdue++
			if overdue <= s.cfg.MaxLoggedRecords {
				log.Warn("document review overdue",
					zap.String("document_id", doc.ID.String()),
					zap.String("code", doc.Code),
					zap.String("version", doc.Version),
					zap.Time("review_date", doc.ReviewDate.UTC()),
				)
			}
			continue
		}
		upcoming++
	}

	s.metrics.SetBacklog(BacklogDocumentsReviewOverdue, overdue)
	s.metrics.SetBacklog(BacklogDocumentsReviewUpcoming, upcoming)
	jobRunFromContext(ctx).AddFound(overdue + upcoming)
	return nil
}

// StaleTemperaturePointsJob reports active temperature points whose latest
// reading is older than the configured age, or that were never measured.
func (s *Scheduler) StaleTemperaturePointsJob(ctx context.Context) error {
	now := s.clock.Now().UTC()
	cutoff := now.Add(-s.cfg.StaleReadingAge)

	active := true
	points, err := s.temperatureSvc.ListPoints(ctx, temperaturedomain.ListPointRequest{Active: &active})
	if err != nil {
		return err
	}

	stale := 0
	log := s.logger(ctx)
	for _, point := range points {
		if err := ctx.Err(); err != nil {
			return err
		}
		latest, err := s.temperatureSvc.ListReadings(ctx, temperaturedomain.ListReadingRequest{
			TemperaturePointID: point.ID.String(),
			Limit:              1,
		})
		if err != nil {
			return err
		}

		fields := []zap.Field{
			zap.String("temperature_point_id", point.ID.String()),
			zap.String("name", point.Name),
		}
		switch {
		case len(latest) == 0:
			fields = append(fields, zap.Bool("never_measured", true))
		case latest[0].MeasuredAt.Before(cutoff):
			fields = append(fields, zap.Time("last_measured_at", latest[0].MeasuredAt.UTC()))
		default:
			continue
		}

		stale++
		if stale <= s.cfg.MaxLoggedRecords {
			log.Warn("temperature point not measured recently", fields...)
		}
	}

	s.metrics.SetBacklog(BacklogTemperaturePointsStale, stale)
	jobRunFromContext(ctx).AddFound(stale)
	return nil
}
