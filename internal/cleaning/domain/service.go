package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	ListAreas(ctx context.Context, req ListAreaRequest) ([]CleaningArea, error)
	GetArea(ctx context.Context, id string) (*CleaningArea, error)
	CreateArea(ctx context.Context, req AreaRequest) (*CleaningArea, error)
	UpdateArea(ctx context.Context, id string, req AreaRequest) (*CleaningArea, error)
	DeleteArea(ctx context.Context, id string) error

	ListRecords(ctx context.Context, req ListRecordRequest) ([]CleaningRecord, error)
	CreateRecord(ctx context.Context, req RecordRequest) (*CleaningRecord, error)
	UpdateRecord(ctx context.Context, id string, req RecordRequest) (*CleaningRecord, error)
	DeleteRecord(ctx context.Context, id string) error
}

type ListAreaRequest struct {
	Active *bool
}

type AreaRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
	Method      *string `json:"method"`
	Agent       *string `json:"agent"`
	Active      *bool   `json:"active"`
}

type ListRecordRequest struct {
	CleaningAreaID string
	From           *time.Time
	To             *time.Time
}

type RecordRequest struct {
	CleaningAreaID *string    `json:"cleaning_area_id"`
	PerformedAt    *time.Time `json:"performed_at"`
	Method         *string    `json:"method"`
	Agent          *string    `json:"agent"`
	Concentration  *string    `json:"concentration"`
	IsEffective    *bool      `json:"is_effective"`
	VerifiedBy     *string    `json:"verified_by"`
	Notes          *string    `json:"notes"`
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidFrequency = errors.New("invalid_frequency")
	ErrInvalidArea      = errors.New("invalid_cleaning_area_id")
	ErrInactiveArea     = errors.New("inactive_cleaning_area")
	ErrAreaInUse        = errors.New("cleaning_area_in_use")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidID        = errors.New("invalid_id")
)
