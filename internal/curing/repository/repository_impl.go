package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/curing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, batch *domain.CuringBatch) error {
	return db.WithContext(ctx).Omit("Reception").Create(batch).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CuringBatch, error) {
	var item domain.CuringBatch
	err := db.WithContext(ctx).
		Preload("Reception").
		Preload("Reception.RawMaterial").
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

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.BatchFilter) ([]domain.CuringBatch, error) {
	stmt := db.WithContext(ctx).Model(&domain.CuringBatch{}).
		Preload("Reception").
		Preload("Reception.RawMaterial")
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		stmt = stmt.Where("curing_method = ?", filter.Method)
	}
	if filter.ReceptionID != 0 {
		stmt = stmt.Where("reception_id = ?", filter.ReceptionID)
	}
	if filter.From != nil {
		stmt = stmt.Where("start_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("start_date <= ?", filter.To.UTC())
	}

	var items []domain.CuringBatch
	if err := stmt.Order("start_date desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, batch *domain.CuringBatch, from domain.Status) (bool, error) {
	if batch == nil {
		return false, gorm.ErrInvalidData
	}
	res := db.WithContext(ctx).Model(&domain.CuringBatch{}).
		Where("id = ? AND status = ?", batch.ID, from).
		Updates(map[string]any{
			"meat_description": batch.MeatDescription,
			"planned_end_date": batch.PlannedEndDate,
			"actual_end_date":  batch.ActualEndDate,
			"temperature":      batch.Temperature,
			"status":           batch.Status,
			"notes":            batch.Notes,
			"updated_at":       batch.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.CuringBatch{})
	return res.RowsAffected, res.Error
}

func (r *repo) BatchNumbersWithBase(ctx context.Context, db *gorm.DB, base string) ([]string, error) {
	var numbers []string
	err := db.WithContext(ctx).Model(&domain.CuringBatch{}).
		Where("batch_number = ? OR batch_number LIKE ?", base, base+"-%").
		Pluck("batch_number", &numbers).Error
	return numbers, err
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, status domain.Status) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.CuringBatch{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
