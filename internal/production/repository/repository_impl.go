package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/production/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, batch *domain.ProductionBatch) error {
	if batch == nil {
		return gorm.ErrInvalidData
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(batch).Error; err != nil {
		return err
	}
	if len(batch.Materials) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&batch.Materials).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ProductionBatch, error) {
	var item domain.ProductionBatch
	err := db.WithContext(ctx).
		Preload("Product").
		Preload("Materials", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.BatchFilter) ([]domain.ProductionBatch, error) {
	stmt := db.WithContext(ctx).Model(&domain.ProductionBatch{}).Preload("Product")
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ProductID != 0 {
		stmt = stmt.Where("product_id = ?", filter.ProductID)
	}
	if filter.From != nil {
		stmt = stmt.Where("production_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("production_date <= ?", filter.To.UTC())
	}

	var items []domain.ProductionBatch
	if err := stmt.Order("production_date desc, batch_number desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, batch *domain.ProductionBatch, from domain.Status) (bool, error) {
	if batch == nil {
		return false, gorm.ErrInvalidData
	}
	res := db.WithContext(ctx).Model(&domain.ProductionBatch{}).
		Where("id = ? AND status = ?", batch.ID, from).
		Updates(batchColumns(batch))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func batchColumns(batch *domain.ProductionBatch) map[string]any {
	return map[string]any{
		"quantity":              batch.Quantity,
		"unit":                  batch.Unit,
		"start_time":            batch.StartTime,
		"end_time":              batch.EndTime,
		"status":                batch.Status,
		"final_temperature":     batch.FinalTemperature,
		"temperature_compliant": batch.TemperatureCompliant,
		"required_temperature":  batch.RequiredTemperature,
		"notes":                 batch.Notes,
		"block_reason":          batch.BlockReason,
		"updated_at":            batch.UpdatedAt,
	}
}

func (r *repo) ReplaceMaterials(ctx context.Context, db *gorm.DB, batchID snowflake.ID, materials []domain.BatchMaterial) error {
	if err := db.WithContext(ctx).Where("batch_id = ?", batchID).Delete(&domain.BatchMaterial{}).Error; err != nil {
		return err
	}
	if len(materials) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&materials).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	if err := db.WithContext(ctx).Where("batch_id = ?", id).Delete(&domain.BatchMaterial{}).Error; err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ProductionBatch{})
	return res.RowsAffected, res.Error
}

func (r *repo) BatchNumbersWithPrefix(ctx context.Context, db *gorm.DB, prefix string) ([]string, error) {
	var numbers []string
	err := db.WithContext(ctx).Model(&domain.ProductionBatch{}).
		Where("batch_number LIKE ?", prefix+"-%").
		Pluck("batch_number", &numbers).Error
	return numbers, err
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, status domain.Status) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.ProductionBatch{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
