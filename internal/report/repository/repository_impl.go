package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/haccp/internal/audit/domain"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	"github.com/smallbiznis/haccp/internal/report/domain"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAuditRecord(ctx context.Context, db *gorm.DB, id snowflake.ID) (*auditdomain.AuditRecord, error) {
	var item auditdomain.AuditRecord
	return first(db.WithContext(ctx).Where("id = ?", id), &item)
}

func (r *repo) FindChecklist(ctx context.Context, db *gorm.DB, id snowflake.ID) (*auditdomain.AuditChecklist, error) {
	var item auditdomain.AuditChecklist
	return first(db.WithContext(ctx).Where("id = ?", id), &item)
}

func (r *repo) FindProductionBatch(ctx context.Context, db *gorm.DB, id snowflake.ID) (*productiondomain.ProductionBatch, error) {
	var item productiondomain.ProductionBatch
	return first(db.WithContext(ctx).Preload("Product").Where("id = ?", id), &item)
}

func (r *repo) FindTemperaturePoint(ctx context.Context, db *gorm.DB, id snowflake.ID) (*temperaturedomain.TemperaturePoint, error) {
	var item temperaturedomain.TemperaturePoint
	return first(db.WithContext(ctx).Where("id = ?", id), &item)
}

func (r *repo) ListReadings(ctx context.Context, db *gorm.DB, filter domain.ReadingFilter) ([]temperaturedomain.TemperatureReading, error) {
	stmt := db.WithContext(ctx).Model(&temperaturedomain.TemperatureReading{}).
		Preload("Point").
		Where("measured_at >= ? AND measured_at <= ?", filter.From.UTC(), filter.To.UTC())
	if filter.PointID != 0 {
		stmt = stmt.Where("temperature_point_id = ?", filter.PointID)
	}

	var items []temperaturedomain.TemperatureReading
	if err := stmt.Order("measured_at asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListCorrectiveActions(ctx context.Context, db *gorm.DB, filter domain.CorrectiveActionFilter) ([]cadomain.CorrectiveAction, error) {
	stmt := db.WithContext(ctx).Model(&cadomain.CorrectiveAction{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		stmt = stmt.Where("priority = ?", filter.Priority)
	}
	if filter.From != nil {
		stmt = stmt.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("created_at <= ?", filter.To.UTC())
	}

	var items []cadomain.CorrectiveAction
	if err := stmt.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func first[T any](stmt *gorm.DB, dest *T) (*T, error) {
	if err := stmt.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}
