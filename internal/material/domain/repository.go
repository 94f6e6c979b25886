package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	ListActiveMaterials(ctx context.Context, db *gorm.DB) ([]Material, error)

	CreateReceipt(ctx context.Context, db *gorm.DB, receipt *MaterialReceipt) error
	FindReceiptByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MaterialReceipt, error)
	ListReceipts(ctx context.Context, db *gorm.DB, filter ReceiptFilter) ([]MaterialReceipt, error)
	UpdateReceiptDetails(ctx context.Context, db *gorm.DB, receipt *MaterialReceipt) error
	DeleteReceipt(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	CountReceipts(ctx context.Context, db *gorm.DB, materialID snowflake.ID) (int64, error)

	// OldestExceeding returns the oldest receipt holding more than amount.
	OldestExceeding(ctx context.Context, db *gorm.DB, materialID snowflake.ID, amount decimal.Decimal) (*MaterialReceipt, error)
	// ListAvailable returns receipts with stock on hand, oldest first.
	ListAvailable(ctx context.Context, db *gorm.DB, materialID snowflake.ID) ([]MaterialReceipt, error)
	OldestReceipt(ctx context.Context, db *gorm.DB, materialID snowflake.ID) (*MaterialReceipt, error)
	// DecrementIfAvailable subtracts amount only while the receipt still holds
	// it and reports whether a row was changed.
	DecrementIfAvailable(ctx context.Context, db *gorm.DB, receiptID snowflake.ID, amount decimal.Decimal) (bool, error)
	// DecrementIfExceeding subtracts amount only while the receipt holds more
	// than it.
	DecrementIfExceeding(ctx context.Context, db *gorm.DB, receiptID snowflake.ID, amount decimal.Decimal) (bool, error)
	Decrement(ctx context.Context, db *gorm.DB, receiptID snowflake.ID, amount decimal.Decimal) error

	CreateMovements(ctx context.Context, db *gorm.DB, movements []StockMovement) error
	ListMovements(ctx context.Context, db *gorm.DB, filter MovementFilter) ([]StockMovement, error)
	CountDeductions(ctx context.Context, db *gorm.DB, receiptID snowflake.ID) (int64, error)
}
