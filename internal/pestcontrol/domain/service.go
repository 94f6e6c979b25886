package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	ListPoints(ctx context.Context, req ListPointRequest) ([]PestControlPoint, error)
	GetPoint(ctx context.Context, id string) (*PestControlPoint, error)
	CreatePoint(ctx context.Context, req PointRequest) (*PestControlPoint, error)
	UpdatePoint(ctx context.Context, id string, req PointRequest) (*PestControlPoint, error)
	DeletePoint(ctx context.Context, id string) error

	ListChecks(ctx context.Context, req ListCheckRequest) ([]PestControlCheck, error)
	CreateCheck(ctx context.Context, req CreateCheckRequest) (*CreateCheckResponse, error)
	UpdateCheck(ctx context.Context, id string, req UpdateCheckRequest) (*PestControlCheck, error)
	DeleteCheck(ctx context.Context, id string) error
}

type ListPointRequest struct {
	Type   string
	Active *bool
}

type PointRequest struct {
	Code     *string `json:"code"`
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Type     *string `json:"type"`
	Active   *bool   `json:"active"`
}

type ListCheckRequest struct {
	PointID string
	Status  string
	From    *time.Time
	To      *time.Time
}

type CreateCheckRequest struct {
	PointID     string     `json:"point_id"`
	CheckedAt   *time.Time `json:"checked_at"`
	Status      string     `json:"status"`
	Findings    *string    `json:"findings"`
	ActionTaken *string    `json:"action_taken"`
}

// UpdateCheckRequest edits the notes of a check. The status that drove the
// compliance evaluation is fixed once recorded.
type UpdateCheckRequest struct {
	Findings    *string `json:"findings"`
	ActionTaken *string `json:"action_taken"`
}

type CreateCheckResponse struct {
	Check              PestControlCheck `json:"check"`
	CorrectiveActionID *string          `json:"corrective_action_id,omitempty"`
}

var (
	ErrInvalidCode   = errors.New("invalid_code")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidType   = errors.New("invalid_type")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidPoint  = errors.New("invalid_point_id")
	ErrInactivePoint = errors.New("inactive_point")
	ErrDuplicateCode = errors.New("duplicate_code")
	ErrPointInUse    = errors.New("point_in_use")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidID     = errors.New("invalid_id")
)
