package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/temperature/domain"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreatePoint(ctx context.Context, db *gorm.DB, point *domain.TemperaturePoint) error {
	return db.WithContext(ctx).Create(point).Error
}

func (r *repo) FindPointByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TemperaturePoint, error) {
	var point domain.TemperaturePoint
	err := db.WithContext(ctx).Where("id = ?", id).First(&point).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &point, nil
}

func (r *repo) ListPoints(ctx context.Context, db *gorm.DB, filter domain.ListPointRequest) ([]domain.TemperaturePoint, error) {
	var items []domain.TemperaturePoint
	stmt := db.WithContext(ctx).Model(&domain.TemperaturePoint{})
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if err := stmt.Order("name asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdatePoint(ctx context.Context, db *gorm.DB, point *domain.TemperaturePoint) error {
	if point == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE temperature_points
		 SET name = ?, location = ?, type = ?, min_temp = ?, max_temp = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		point.Name,
		point.Location,
		point.Type,
		point.MinTemp,
		point.MaxTemp,
		point.Active,
		point.UpdatedAt,
		point.ID,
	).Error
}

func (r *repo) DeletePoint(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.TemperaturePoint{})
	return res.RowsAffected, res.Error
}

func (r *repo) CountReadings(ctx context.Context, db *gorm.DB, pointID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.TemperatureReading{}).
		Where("temperature_point_id = ?", pointID).
		Count(&count).Error
	return count, err
}

func (r *repo) CreateReading(ctx context.Context, db *gorm.DB, reading *domain.TemperatureReading) error {
	return db.WithContext(ctx).Omit("Point").Create(reading).Error
}

func (r *repo) FindReadingByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TemperatureReading, error) {
	var reading domain.TemperatureReading
	err := db.WithContext(ctx).Preload("Point").Where("id = ?", id).First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *repo) ListReadings(ctx context.Context, db *gorm.DB, filter domain.ListReadingRequest) ([]domain.TemperatureReading, error) {
	var items []domain.TemperatureReading
	stmt := db.WithContext(ctx).Model(&domain.TemperatureReading{}).Preload("Point")
	if filter.PointID != 0 {
		stmt = stmt.Where("temperature_point_id = ?", filter.PointID)
	}
	if filter.IsCompliant != nil {
		stmt = stmt.Where("is_compliant = ?", *filter.IsCompliant)
	}
	if filter.From != nil {
		stmt = stmt.Where("measured_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("measured_at <= ?", *filter.To)
	}
	stmt = option.WithLimit(filter.Limit).Apply(stmt.Order("measured_at desc, id desc"))
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountNonCompliantSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.TemperatureReading{}).
		Where("is_compliant = ? AND measured_at >= ?", false, since).
		Count(&count).Error
	return count, err
}

func (r *repo) DeleteReading(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.TemperatureReading{})
	return res.RowsAffected, res.Error
}
