package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]ProductionBatch, error)
	Get(ctx context.Context, id string) (*ProductionBatch, error)
	Create(ctx context.Context, req CreateRequest) (*ProductionBatch, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*ProductionBatch, error)
	Complete(ctx context.Context, id string, req CompleteRequest) (*CompleteResponse, error)
	Release(ctx context.Context, id string) (*ProductionBatch, error)
	Block(ctx context.Context, id string, req BlockRequest) (*ProductionBatch, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Status    string
	ProductID string
	From      *time.Time
	To        *time.Time
}

type BatchFilter struct {
	Status    Status
	ProductID snowflake.ID
	From      *time.Time
	To        *time.Time
}

type MaterialRequest struct {
	Kind     string           `json:"kind"`
	SourceID string           `json:"source_id"`
	Quantity *decimal.Decimal `json:"quantity"`
	Unit     *string          `json:"unit"`
}

type CreateRequest struct {
	ProductID      string            `json:"product_id"`
	Quantity       *decimal.Decimal  `json:"quantity"`
	Unit           *string           `json:"unit"`
	ProductionDate *time.Time        `json:"production_date"`
	StartTime      *time.Time        `json:"start_time"`
	Notes          *string           `json:"notes"`
	Materials      []MaterialRequest `json:"materials"`
}

// UpdateRequest replaces the material lines only when Materials is non-nil.
type UpdateRequest struct {
	Quantity  *decimal.Decimal   `json:"quantity"`
	Unit      *string            `json:"unit"`
	StartTime *time.Time         `json:"start_time"`
	Notes     *string            `json:"notes"`
	Materials *[]MaterialRequest `json:"materials"`
}

type CompleteRequest struct {
	FinalTemperature *float64   `json:"final_temperature"`
	EndTime          *time.Time `json:"end_time"`
	Notes            *string    `json:"notes"`
}

type CompleteResponse struct {
	Batch              ProductionBatch `json:"batch"`
	CorrectiveActionID *string         `json:"corrective_action_id,omitempty"`
}

type BlockRequest struct {
	Reason string `json:"reason"`
}

var (
	ErrInvalidProduct          = errors.New("invalid_product_id")
	ErrInactiveProduct         = errors.New("inactive_product")
	ErrInvalidQuantity         = errors.New("invalid_quantity")
	ErrInvalidUnit             = errors.New("invalid_unit")
	ErrInvalidStatus           = errors.New("invalid_status")
	ErrInvalidMaterialKind     = errors.New("invalid_material_kind")
	ErrInvalidMaterialSource   = errors.New("invalid_material_source")
	ErrInvalidFinalTemperature = errors.New("invalid_final_temperature")
	ErrInvalidEndTime          = errors.New("invalid_end_time")
	ErrInvalidReason           = errors.New("invalid_block_reason")
	ErrInvalidTransition       = errors.New("invalid_status_transition")
	ErrNotCompliant            = errors.New("batch_not_compliant")
	ErrBatchNumberConflict     = errors.New("batch_number_conflict")
	ErrBatchInUse              = errors.New("batch_in_use")
	ErrNotFound                = errors.New("not_found")
	ErrInvalidID               = errors.New("invalid_id")
)
