package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	curingdomain "github.com/smallbiznis/haccp/internal/curing/domain"
	"github.com/smallbiznis/haccp/internal/dashboard/domain"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recentNonCompliantLimit = 5

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

type priorityRow struct {
	Priority string `gorm:"column:priority"`
	Total    int64  `gorm:"column:total"`
}

type readingRow struct {
	ID          snowflake.ID `gorm:"column:id"`
	PointName   string       `gorm:"column:point_name"`
	Temperature float64      `gorm:"column:temperature"`
	MinTemp     float64      `gorm:"column:min_temp"`
	MaxTemp     float64      `gorm:"column:max_temp"`
	MeasuredAt  time.Time    `gorm:"column:measured_at"`
}

func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	now := s.clock.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := now.Add(-24 * time.Hour)
	db := s.db.WithContext(ctx)

	summary := &domain.Summary{
		GeneratedAt: now,
		CorrectiveActions: domain.CorrectiveActionSummary{
			ByPriority: map[string]int64{
				string(cadomain.PriorityCritical): 0,
				string(cadomain.PriorityHigh):     0,
				string(cadomain.PriorityMedium):   0,
				string(cadomain.PriorityLow):      0,
			},
		},
		Temperature: domain.TemperatureSummary{RecentNonCompliant: []domain.NonCompliantReading{}},
	}

	var priorities []priorityRow
	if err := db.Raw(
		`SELECT priority, COUNT(*) AS total
		 FROM corrective_actions
		 WHERE status <> ?
		 GROUP BY priority`,
		cadomain.StatusCompleted,
	).Scan(&priorities).Error; err != nil {
		return nil, err
	}
	for _, row := range priorities {
		summary.CorrectiveActions.ByPriority[row.Priority] = row.Total
		summary.CorrectiveActions.Open += row.Total
	}

	if err := db.Model(&cadomain.CorrectiveAction{}).
		Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", cadomain.StatusCompleted, now).
		Count(&summary.CorrectiveActions.Overdue).Error; err != nil {
		return nil, err
	}

	if err := db.Table("temperature_readings").
		Where("measured_at >= ?", since).
		Count(&summary.Temperature.ReadingsLast24h).Error; err != nil {
		return nil, err
	}
	if err := db.Table("temperature_readings").
		Where("measured_at >= ? AND is_compliant = ?", since, false).
		Count(&summary.Temperature.NonCompliantLast24h).Error; err != nil {
		return nil, err
	}

	var readings []readingRow
	if err := db.Raw(
		`SELECT r.id, p.name AS point_name, r.temperature, p.min_temp, p.max_temp, r.measured_at
		 FROM temperature_readings r
		 JOIN temperature_points p ON p.id = r.temperature_point_id
		 WHERE r.measured_at >= ? AND r.is_compliant = ?
		 ORDER BY r.measured_at DESC, r.id DESC
		 LIMIT ?`,
		since, false, recentNonCompliantLimit,
	).Scan(&readings).Error; err != nil {
		return nil, err
	}
	for _, row := range readings {
		summary.Temperature.RecentNonCompliant = append(summary.Temperature.RecentNonCompliant, domain.NonCompliantReading{
			ID:          row.ID.String(),
			PointName:   row.PointName,
			Temperature: row.Temperature,
			MinTemp:     row.MinTemp,
			MaxTemp:     row.MaxTemp,
			MeasuredAt:  row.MeasuredAt,
		})
	}

	if err := db.Model(&curingdomain.CuringBatch{}).
		Where("status = ?", curingdomain.StatusInProgress).
		Count(&summary.CuringInProgress).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&productiondomain.ProductionBatch{}).
		Where("status = ?", productiondomain.StatusInProgress).
		Count(&summary.BatchesInProgress).Error; err != nil {
		return nil, err
	}
	if err := db.Table("receptions").
		Where("received_at >= ? AND received_at < ?", startOfDay, startOfDay.AddDate(0, 0, 1)).
		Count(&summary.ReceptionsToday).Error; err != nil {
		return nil, err
	}

	return summary, nil
}
