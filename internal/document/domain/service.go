package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	Create(ctx context.Context, req DocumentRequest) (*Document, error)
	Update(ctx context.Context, id string, req DocumentRequest) (*Document, error)
	Delete(ctx context.Context, id string) error
	// DueForReview lists active documents whose review date is on or before the given time.
	DueForReview(ctx context.Context, before time.Time) ([]Document, error)
}

type ListRequest struct {
	Category string
	Status   string
}

type DocumentRequest struct {
	Code          *string    `json:"code"`
	Title         *string    `json:"title"`
	Category      *string    `json:"category"`
	Version       *string    `json:"version"`
	FileURL       *string    `json:"file_url"`
	EffectiveDate *time.Time `json:"effective_date"`
	ReviewDate    *time.Time `json:"review_date"`
	Status        *string    `json:"status"`
	Notes         *string    `json:"notes"`
}

var (
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidDates    = errors.New("invalid_review_date")
	ErrDuplicateCode   = errors.New("duplicate_code")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
)
