package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	ListMaterials(ctx context.Context, req ListMaterialRequest) ([]Material, error)
	GetMaterial(ctx context.Context, id string) (*Material, error)
	CreateMaterial(ctx context.Context, req MaterialRequest) (*Material, error)
	UpdateMaterial(ctx context.Context, id string, req MaterialRequest) (*Material, error)
	DeleteMaterial(ctx context.Context, id string) error
	FindByNamePattern(ctx context.Context, pattern string) ([]Material, error)

	ListReceipts(ctx context.Context, req ListReceiptRequest) ([]MaterialReceipt, error)
	GetReceipt(ctx context.Context, id string) (*MaterialReceipt, error)
	CreateReceipt(ctx context.Context, req ReceiptRequest) (*MaterialReceipt, error)
	UpdateReceipt(ctx context.Context, id string, req ReceiptRequest) (*MaterialReceipt, error)
	DeleteReceipt(ctx context.Context, id string) error
	ListMovements(ctx context.Context, req ListMovementRequest) ([]StockMovement, error)

	// Deduct takes stock from the material's receipts in FIFO order on tx so
	// the change commits with the caller's write.
	Deduct(ctx context.Context, tx *gorm.DB, req DeductRequest) (*DeductionResult, error)
}

type ListMaterialRequest struct {
	Category string
	Active   *bool
}

type MaterialRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Unit     *string `json:"unit"`
	Active   *bool   `json:"active"`
}

type ListReceiptRequest struct {
	MaterialID    string
	AvailableOnly bool
}

type ReceiptFilter struct {
	MaterialID    snowflake.ID
	AvailableOnly bool
}

type ReceiptRequest struct {
	MaterialID  *string          `json:"material_id"`
	SupplierID  *string          `json:"supplier_id"`
	BatchNumber *string          `json:"batch_number"`
	Quantity    *decimal.Decimal `json:"quantity"`
	ReceivedAt  *time.Time       `json:"received_at"`
	ExpiryDate  *time.Time       `json:"expiry_date"`
	Notes       *string          `json:"notes"`
}

type ListMovementRequest struct {
	MaterialID string
	ReceiptID  string
}

type MovementFilter struct {
	MaterialID snowflake.ID
	ReceiptID  snowflake.ID
}

type DeductRequest struct {
	MaterialID snowflake.ID
	Amount     decimal.Decimal
	// Policy is one of the config stock policies; empty uses the configured one.
	Policy     string
	SourceType string
	SourceID   snowflake.ID
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidUnit        = errors.New("invalid_unit")
	ErrInvalidMaterial    = errors.New("invalid_material_id")
	ErrInvalidSupplier    = errors.New("invalid_supplier_id")
	ErrInvalidBatchNumber = errors.New("invalid_batch_number")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidPolicy      = errors.New("invalid_stock_policy")
	ErrInsufficientStock  = errors.New("insufficient_stock")
	ErrMaterialInUse      = errors.New("material_in_use")
	ErrReceiptInUse       = errors.New("receipt_in_use")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
)
