package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	ListTypes(ctx context.Context, req ListTypeRequest) ([]LabTestType, error)
	GetType(ctx context.Context, id string) (*LabTestType, error)
	CreateType(ctx context.Context, req TypeRequest) (*LabTestType, error)
	UpdateType(ctx context.Context, id string, req TypeRequest) (*LabTestType, error)
	DeleteType(ctx context.Context, id string) error

	ListTests(ctx context.Context, req ListTestRequest) ([]LabTest, error)
	GetTest(ctx context.Context, id string) (*LabTest, error)
	CreateTest(ctx context.Context, req TestRequest) (*LabTest, error)
	UpdateTest(ctx context.Context, id string, req TestRequest) (*LabTest, error)
	DeleteTest(ctx context.Context, id string) error
}

type ListTypeRequest struct {
	Active *bool
}

type TypeRequest struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Unit     *string  `json:"unit"`
	MinValue *float64 `json:"min_value"`
	MaxValue *float64 `json:"max_value"`
	Active   *bool    `json:"active"`
}

type ListTestRequest struct {
	TestTypeID        string
	ProductionBatchID string
	Status            string
	From              *time.Time
	To                *time.Time
}

// TestRequest records a sample and, once known, its result. A result value
// or text completes the test; compliance is derived from the type's range
// unless given explicitly for text-only results.
type TestRequest struct {
	TestTypeID        *string    `json:"test_type_id"`
	SampleDescription *string    `json:"sample_description"`
	ProductionBatchID *string    `json:"production_batch_id"`
	SampledAt         *time.Time `json:"sampled_at"`
	Laboratory        *string    `json:"laboratory"`
	ResultValue       *float64   `json:"result_value"`
	ResultText        *string    `json:"result_text"`
	IsCompliant       *bool      `json:"is_compliant"`
	Notes             *string    `json:"notes"`
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidRange  = errors.New("invalid_range")
	ErrInvalidType   = errors.New("invalid_test_type_id")
	ErrInactiveType  = errors.New("inactive_test_type")
	ErrInvalidSample = errors.New("invalid_sample_description")
	ErrInvalidBatch  = errors.New("invalid_production_batch_id")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrTypeInUse     = errors.New("test_type_in_use")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidID     = errors.New("invalid_id")
)
