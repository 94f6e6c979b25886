package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]CuringBatch, error)
	Get(ctx context.Context, id string) (*CuringBatch, error)
	Create(ctx context.Context, req CreateRequest) (*CuringBatch, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*CuringBatch, error)
	Complete(ctx context.Context, id string, req CompleteRequest) (*CuringBatch, error)
	Cancel(ctx context.Context, id string, req CancelRequest) (*CuringBatch, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Status      string
	Method      string
	ReceptionID string
	From        *time.Time
	To          *time.Time
}

type BatchFilter struct {
	Status      Status
	Method      Method
	ReceptionID snowflake.ID
	From        *time.Time
	To          *time.Time
}

type CreateRequest struct {
	ReceptionID            string           `json:"reception_id"`
	MeatDescription        *string          `json:"meat_description"`
	Quantity               *decimal.Decimal `json:"quantity"`
	Method                 string           `json:"curing_method"`
	SaltPercentage         *decimal.Decimal `json:"salt_percentage"`
	CuringSaltAmount       *decimal.Decimal `json:"curing_salt_amount"`
	InjectionPercentage    *decimal.Decimal `json:"injection_percentage"`
	BrineSaltConcentration *decimal.Decimal `json:"brine_salt_concentration"`
	StartDate              *time.Time       `json:"start_date"`
	Temperature            *float64         `json:"temperature"`
	Notes                  *string          `json:"notes"`
}

type UpdateRequest struct {
	MeatDescription *string    `json:"meat_description"`
	PlannedEndDate  *time.Time `json:"planned_end_date"`
	Temperature     *float64   `json:"temperature"`
	Notes           *string    `json:"notes"`
}

type CompleteRequest struct {
	ActualEndDate *time.Time `json:"actual_end_date"`
	Temperature   *float64   `json:"temperature"`
	Notes         *string    `json:"notes"`
}

type CancelRequest struct {
	Notes *string `json:"notes"`
}

var (
	ErrInvalidReception    = errors.New("invalid_reception_id")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidMethod       = errors.New("invalid_curing_method")
	ErrInvalidPercentage   = errors.New("invalid_percentage")
	ErrInvalidSaltAmount   = errors.New("invalid_curing_salt_amount")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidEndDate      = errors.New("invalid_end_date")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrBatchNumberConflict = errors.New("batch_number_conflict")
	ErrBatchInUse          = errors.New("curing_batch_in_use")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidID           = errors.New("invalid_id")
)
