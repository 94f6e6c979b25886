package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/reception/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, reception *domain.Reception) error {
	return db.WithContext(ctx).Omit("RawMaterial", "Supplier").Create(reception).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Reception, error) {
	var item domain.Reception
	err := db.WithContext(ctx).
		Preload("RawMaterial").
		Preload("Supplier").
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

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ReceptionFilter) ([]domain.Reception, error) {
	stmt := db.WithContext(ctx).Model(&domain.Reception{}).
		Preload("RawMaterial").
		Preload("Supplier")
	if filter.RawMaterialID != 0 {
		stmt = stmt.Where("raw_material_id = ?", filter.RawMaterialID)
	}
	if filter.SupplierID != 0 {
		stmt = stmt.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.IsCompliant != nil {
		stmt = stmt.Where("is_compliant = ?", *filter.IsCompliant)
	}
	if filter.From != nil {
		stmt = stmt.Where("received_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("received_at <= ?", filter.To.UTC())
	}

	var items []domain.Reception
	if err := stmt.Order("received_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, reception *domain.Reception) error {
	if reception == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Omit("RawMaterial", "Supplier", "CreatedAt").Save(reception).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Reception{})
	return res.RowsAffected, res.Error
}

func (r *repo) CountReceivedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Reception{}).
		Where("received_at >= ? AND received_at < ?", from.UTC(), to.UTC()).
		Count(&count).Error
	return count, err
}

func (r *repo) CountBySupplier(ctx context.Context, db *gorm.DB, supplierID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Reception{}).Where("supplier_id = ?", supplierID).Count(&count).Error
	return count, err
}

func (r *repo) CountByRawMaterial(ctx context.Context, db *gorm.DB, rawMaterialID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Reception{}).Where("raw_material_id = ?", rawMaterialID).Count(&count).Error
	return count, err
}
