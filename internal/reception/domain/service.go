package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	ListSuppliers(ctx context.Context, req ListSupplierRequest) ([]Supplier, error)
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	CreateSupplier(ctx context.Context, req SupplierRequest) (*Supplier, error)
	UpdateSupplier(ctx context.Context, id string, req SupplierRequest) (*Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error

	ListRawMaterials(ctx context.Context, req ListRawMaterialRequest) ([]RawMaterial, error)
	GetRawMaterial(ctx context.Context, id string) (*RawMaterial, error)
	CreateRawMaterial(ctx context.Context, req RawMaterialRequest) (*RawMaterial, error)
	UpdateRawMaterial(ctx context.Context, id string, req RawMaterialRequest) (*RawMaterial, error)
	DeleteRawMaterial(ctx context.Context, id string) error

	ListReceptions(ctx context.Context, req ListReceptionRequest) ([]Reception, error)
	GetReception(ctx context.Context, id string) (*Reception, error)
	CreateReception(ctx context.Context, req ReceptionRequest) (*CreateReceptionResponse, error)
	UpdateReception(ctx context.Context, id string, req ReceptionRequest) (*Reception, error)
	DeleteReception(ctx context.Context, id string) error
}

type ListSupplierRequest struct {
	Active   *bool
	Approved *bool
}

type SupplierRequest struct {
	Name          *string `json:"name"`
	Address       *string `json:"address"`
	TaxID         *string `json:"tax_id"`
	VetNumber     *string `json:"vet_number"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Approved      *bool   `json:"approved"`
	Active        *bool   `json:"active"`
}

type ListRawMaterialRequest struct {
	SupplierID string
	Category   string
}

type RawMaterialRequest struct {
	Name           *string  `json:"name"`
	Category       *string  `json:"category"`
	Unit           *string  `json:"unit"`
	SupplierID     *string  `json:"supplier_id"`
	StorageMinTemp *float64 `json:"storage_min_temp"`
	StorageMaxTemp *float64 `json:"storage_max_temp"`
}

type ListReceptionRequest struct {
	RawMaterialID string
	SupplierID    string
	IsCompliant   *bool
	From          *time.Time
	To            *time.Time
}

// ReceptionFilter is the parsed form of ListReceptionRequest.
type ReceptionFilter struct {
	RawMaterialID snowflake.ID
	SupplierID    snowflake.ID
	IsCompliant   *bool
	From          *time.Time
	To            *time.Time
}

type ReceptionRequest struct {
	RawMaterialID  *string    `json:"raw_material_id"`
	SupplierID     *string    `json:"supplier_id"`
	BatchNumber    *string    `json:"batch_number"`
	Quantity       *float64   `json:"quantity"`
	Unit           *string    `json:"unit"`
	ReceivedAt     *time.Time `json:"received_at"`
	Temperature    *float64   `json:"temperature"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	DocumentNumber *string    `json:"document_number"`
	IsCompliant    *bool      `json:"is_compliant"`
	Notes          *string    `json:"notes"`
}

type CreateReceptionResponse struct {
	Reception          Reception `json:"reception"`
	CorrectiveActionID *string   `json:"corrective_action_id,omitempty"`
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidUnit        = errors.New("invalid_unit")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidLimits      = errors.New("invalid_storage_limits")
	ErrInvalidSupplier    = errors.New("invalid_supplier_id")
	ErrInvalidRawMaterial = errors.New("invalid_raw_material_id")
	ErrInvalidBatchNumber = errors.New("invalid_batch_number")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrSupplierInUse      = errors.New("supplier_in_use")
	ErrRawMaterialInUse   = errors.New("raw_material_in_use")
	ErrReceptionInUse     = errors.New("reception_in_use")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
)
