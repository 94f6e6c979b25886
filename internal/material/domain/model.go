package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryCuringSalt Category = "CURING_SALT"
	CategorySpice      Category = "SPICE"
	CategoryCasing     Category = "CASING"
	CategoryPackaging  Category = "PACKAGING"
	CategoryOther      Category = "OTHER"
)

type Material struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Category  Category     `json:"category" gorm:"type:text;not null"`
	Unit      string       `json:"unit" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Material) TableName() string { return "materials" }

// MaterialReceipt is one delivered lot. Quantity is the amount still on hand
// and is only ever changed through Deduct.
type MaterialReceipt struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	MaterialID      snowflake.ID    `json:"material_id" gorm:"not null;index:idx_material_receipts_fifo,priority:1"`
	SupplierID      *snowflake.ID   `json:"supplier_id,omitempty"`
	BatchNumber     string          `json:"batch_number" gorm:"type:text;not null"`
	InitialQuantity decimal.Decimal `json:"initial_quantity" gorm:"type:numeric(12,3);not null"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3);not null"`
	ReceivedAt      time.Time       `json:"received_at" gorm:"not null;index:idx_material_receipts_fifo,priority:2"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	Notes           *string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy       *snowflake.ID   `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`

	Material *Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (MaterialReceipt) TableName() string { return "material_receipts" }

type MovementReason string

const (
	MovementReceipt    MovementReason = "RECEIPT"
	MovementDeduction  MovementReason = "DEDUCTION"
	MovementAdjustment MovementReason = "ADJUSTMENT"
)

// StockMovement is the append-only trail of every quantity change on a receipt.
// Deductions are stored as negative quantities.
type StockMovement struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	MaterialID snowflake.ID    `json:"material_id" gorm:"not null;index"`
	ReceiptID  snowflake.ID    `json:"receipt_id" gorm:"not null;index"`
	Quantity   decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3);not null"`
	Reason     MovementReason  `json:"reason" gorm:"type:text;not null"`
	SourceType *string         `json:"source_type,omitempty" gorm:"type:text"`
	SourceID   *snowflake.ID   `json:"source_id,omitempty"`
	CreatedBy  *snowflake.ID   `json:"created_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null"`
}

func (StockMovement) TableName() string { return "material_stock_movements" }

type DeductionStatus string

const (
	DeductionDeducted DeductionStatus = "DEDUCTED"
	DeductionSkipped  DeductionStatus = "SKIPPED"
	DeductionPartial  DeductionStatus = "PARTIAL"
	DeductionNegative DeductionStatus = "NEGATIVE"
)

type DeductionLine struct {
	ReceiptID   snowflake.ID    `json:"receipt_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// DeductionResult describes what Deduct did. Shortfall is the part of the
// request that no receipt covered.
type DeductionResult struct {
	MaterialID snowflake.ID    `json:"material_id"`
	Policy     string          `json:"policy"`
	Status     DeductionStatus `json:"status"`
	Requested  decimal.Decimal `json:"requested"`
	Deducted   decimal.Decimal `json:"deducted"`
	Shortfall  decimal.Decimal `json:"shortfall"`
	Lines      []DeductionLine `json:"lines"`
}

func ParseCategory(value string) (Category, bool) {
	switch c := Category(value); c {
	case CategoryCuringSalt, CategorySpice, CategoryCasing, CategoryPackaging, CategoryOther:
		return c, true
	default:
		return "", false
	}
}

// AddLine records quantity taken from receipt.
func (r *DeductionResult) AddLine(receipt *MaterialReceipt, quantity decimal.Decimal) {
	r.Lines = append(r.Lines, DeductionLine{
		ReceiptID:   receipt.ID,
		BatchNumber: receipt.BatchNumber,
		Quantity:    quantity,
	})
	r.Deducted = r.Deducted.Add(quantity)
}
