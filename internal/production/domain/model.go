package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/haccp/internal/product/domain"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusReleased   Status = "RELEASED"
	StatusBlocked    Status = "BLOCKED"
)

// MaterialKind tags what a BatchMaterial line points at. SourceID is a
// reception, a curing batch or a material receipt respectively.
type MaterialKind string

const (
	MaterialKindRawMaterial MaterialKind = "RAW_MATERIAL"
	MaterialKindCuringBatch MaterialKind = "CURING_BATCH"
	MaterialKindMaterial    MaterialKind = "MATERIAL"
)

type ProductionBatch struct {
	ID                   snowflake.ID    `json:"id" gorm:"primaryKey"`
	BatchNumber          string          `json:"batch_number" gorm:"type:text;not null;uniqueIndex:ux_production_batches_batch_number"`
	ProductID            snowflake.ID    `json:"product_id" gorm:"not null;index"`
	Quantity             decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3);not null"`
	Unit                 string          `json:"unit" gorm:"type:text;not null"`
	ProductionDate       time.Time       `json:"production_date" gorm:"not null;index"`
	StartTime            *time.Time      `json:"start_time,omitempty"`
	EndTime              *time.Time      `json:"end_time,omitempty"`
	Status               Status          `json:"status" gorm:"type:text;not null;index"`
	FinalTemperature     *float64        `json:"final_temperature,omitempty" gorm:"type:numeric(6,2)"`
	TemperatureCompliant *bool           `json:"temperature_compliant,omitempty"`
	RequiredTemperature  *float64        `json:"required_temperature,omitempty" gorm:"type:numeric(6,2)"`
	Notes                *string         `json:"notes,omitempty" gorm:"type:text"`
	BlockReason          *string         `json:"block_reason,omitempty" gorm:"type:text"`
	CreatedBy            *snowflake.ID   `json:"created_by,omitempty"`
	CreatedAt            time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt            time.Time       `json:"updated_at" gorm:"not null"`

	Product   *productdomain.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Materials []BatchMaterial        `json:"materials" gorm:"foreignKey:BatchID"`
}

func (ProductionBatch) TableName() string { return "production_batches" }

// BatchMaterial is one line of what went into a production batch.
type BatchMaterial struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	BatchID   snowflake.ID    `json:"batch_id" gorm:"not null;index"`
	Kind      MaterialKind    `json:"kind" gorm:"type:text;not null"`
	SourceID  snowflake.ID    `json:"source_id" gorm:"not null;index"`
	Quantity  decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3);not null"`
	Unit      string          `json:"unit" gorm:"type:text;not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
}

func (BatchMaterial) TableName() string { return "production_batch_materials" }

func ParseStatus(value string) (Status, bool) {
	switch s := Status(value); s {
	case StatusInProgress, StatusCompleted, StatusReleased, StatusBlocked:
		return s, true
	default:
		return "", false
	}
}

func ParseMaterialKind(value string) (MaterialKind, bool) {
	switch k := MaterialKind(value); k {
	case MaterialKindRawMaterial, MaterialKindCuringBatch, MaterialKindMaterial:
		return k, true
	default:
		return "", false
	}
}
