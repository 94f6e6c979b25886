package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Name     string
	Category string
	Active   *bool
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Category    *string        `json:"category"`
	Unit        *string        `json:"unit"`
	Description *string        `json:"description"`
	Active      *bool          `json:"active"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID          string         `json:"-"`
	Name        *string        `json:"name"`
	Category    *string        `json:"category"`
	Unit        *string        `json:"unit"`
	Description *string        `json:"description"`
	Active      *bool          `json:"active"`
	Metadata    map[string]any `json:"metadata"`
}

type Response struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Category    *string        `json:"category,omitempty"`
	Unit        string         `json:"unit"`
	Description *string        `json:"description,omitempty"`
	Active      bool           `json:"active"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidCode   = errors.New("invalid_code")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidUnit   = errors.New("invalid_unit")
	ErrDuplicateCode = errors.New("duplicate_code")
	ErrProductInUse  = errors.New("product_in_use")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidID     = errors.New("invalid_id")
)
