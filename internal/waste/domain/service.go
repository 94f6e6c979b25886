package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	ListTypes(ctx context.Context) ([]WasteType, error)
	CreateType(ctx context.Context, req TypeRequest) (*WasteType, error)
	UpdateType(ctx context.Context, id string, req TypeRequest) (*WasteType, error)
	DeleteType(ctx context.Context, id string) error

	ListCollectors(ctx context.Context) ([]WasteCollector, error)
	CreateCollector(ctx context.Context, req CollectorRequest) (*WasteCollector, error)
	UpdateCollector(ctx context.Context, id string, req CollectorRequest) (*WasteCollector, error)
	DeleteCollector(ctx context.Context, id string) error

	ListRecords(ctx context.Context, req ListRecordRequest) ([]WasteRecord, error)
	CreateRecord(ctx context.Context, req RecordRequest) (*WasteRecord, error)
	UpdateRecord(ctx context.Context, id string, req RecordRequest) (*WasteRecord, error)
	DeleteRecord(ctx context.Context, id string) error
	// TotalByType sums disposed quantities per waste type and unit in [from, to].
	TotalByType(ctx context.Context, from, to time.Time) ([]TypeTotal, error)
}

type TypeRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

type CollectorRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	PermitNumber *string `json:"permit_number"`
}

type ListRecordRequest struct {
	WasteTypeID string
	CollectorID string
	From        *time.Time
	To          *time.Time
}

type RecordRequest struct {
	WasteTypeID    *string          `json:"waste_type_id"`
	CollectorID    *string          `json:"collector_id"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Unit           *string          `json:"unit"`
	DisposalDate   *time.Time       `json:"disposal_date"`
	DocumentNumber *string          `json:"document_number"`
	Notes          *string          `json:"notes"`
}

type TypeTotal struct {
	WasteTypeID string          `json:"waste_type_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
}

var (
	ErrInvalidCode      = errors.New("invalid_code")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidType      = errors.New("invalid_waste_type_id")
	ErrInvalidCollector = errors.New("invalid_collector_id")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrDuplicateCode    = errors.New("duplicate_code")
	ErrTypeInUse        = errors.New("waste_type_in_use")
	ErrCollectorInUse   = errors.New("collector_in_use")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidID        = errors.New("invalid_id")
)
