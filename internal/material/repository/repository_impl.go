package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/material/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListActiveMaterials(ctx context.Context, db *gorm.DB) ([]domain.Material, error) {
	var items []domain.Material
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at asc, id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) CreateReceipt(ctx context.Context, db *gorm.DB, receipt *domain.MaterialReceipt) error {
	return db.WithContext(ctx).Omit("Material").Create(receipt).Error
}

func (r *repo) FindReceiptByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MaterialReceipt, error) {
	var item domain.MaterialReceipt
	err := db.WithContext(ctx).Preload("Material").Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListReceipts(ctx context.Context, db *gorm.DB, filter domain.ReceiptFilter) ([]domain.MaterialReceipt, error) {
	stmt := db.WithContext(ctx).Model(&domain.MaterialReceipt{}).Preload("Material")
	if filter.MaterialID != 0 {
		stmt = stmt.Where("material_id = ?", filter.MaterialID)
	}
	if filter.AvailableOnly {
		stmt = stmt.Where("quantity > 0")
	}

	var items []domain.MaterialReceipt
	if err := stmt.Order("received_at asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateReceiptDetails(ctx context.Context, db *gorm.DB, receipt *domain.MaterialReceipt) error {
	if receipt == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.MaterialReceipt{}).
		Where("id = ?", receipt.ID).
		Updates(map[string]any{
			"supplier_id":  receipt.SupplierID,
			"batch_number": receipt.BatchNumber,
			"received_at":  receipt.ReceivedAt,
			"expiry_date":  receipt.ExpiryDate,
			"notes":        receipt.Notes,
			"updated_at":   receipt.UpdatedAt,
		}).Error
}

func (r *repo) DeleteReceipt(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.MaterialReceipt{})
	return res.RowsAffected, res.Error
}

func (r *repo) CountReceipts(ctx context.Context, db *gorm.DB, materialID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.MaterialReceipt{}).Where("material_id = ?", materialID).Count(&count).Error
	return count, err
}

func (r *repo) OldestExceeding(ctx context.Context, db *gorm.DB, materialID snowflake.ID, amount decimal.Decimal) (*domain.MaterialReceipt, error) {
	var item domain.MaterialReceipt
	err := db.WithContext(ctx).
		Where("material_id = ? AND quantity > ?", materialID, amount).
		Order("received_at asc, id asc").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListAvailable(ctx context.Context, db *gorm.DB, materialID snowflake.ID) ([]domain.MaterialReceipt, error) {
	var items []domain.MaterialReceipt
	err := db.WithContext(ctx).
		Where("material_id = ? AND quantity > 0", materialID).
		Order("received_at asc, id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) OldestReceipt(ctx context.Context, db *gorm.DB, materialID snowflake.ID) (*domain.MaterialReceipt, error) {
	var item domain.MaterialReceipt
	err := db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("received_at asc, id asc").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) DecrementIfAvailable(ctx context.Context, db *gorm.DB, receiptID snowflake.ID, amount decimal.Decimal) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE material_receipts SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		amount, receiptID, amount,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) DecrementIfExceeding(ctx context.Context, db *gorm.DB, receiptID snowflake.ID, amount decimal.Decimal) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE material_receipts SET quantity = quantity - ? WHERE id = ? AND quantity > ?`,
		amount, receiptID, amount,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Decrement(ctx context.Context, db *gorm.DB, receiptID snowflake.ID, amount decimal.Decimal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE material_receipts SET quantity = quantity - ? WHERE id = ?`,
		amount, receiptID,
	).Error
}

func (r *repo) CreateMovements(ctx context.Context, db *gorm.DB, movements []domain.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&movements).Error
}

func (r *repo) ListMovements(ctx context.Context, db *gorm.DB, filter domain.MovementFilter) ([]domain.StockMovement, error) {
	stmt := db.WithContext(ctx).Model(&domain.StockMovement{})
	if filter.MaterialID != 0 {
		stmt = stmt.Where("material_id = ?", filter.MaterialID)
	}
	if filter.ReceiptID != 0 {
		stmt = stmt.Where("receipt_id = ?", filter.ReceiptID)
	}

	var items []domain.StockMovement
	if err := stmt.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountDeductions(ctx context.Context, db *gorm.DB, receiptID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.StockMovement{}).
		Where("receipt_id = ? AND reason <> ?", receiptID, domain.MovementReceipt).
		Count(&count).Error
	return count, err
}
