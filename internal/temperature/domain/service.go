package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	ListPoints(ctx context.Context, req ListPointRequest) ([]TemperaturePoint, error)
	GetPoint(ctx context.Context, id string) (*TemperaturePoint, error)
	CreatePoint(ctx context.Context, req PointRequest) (*TemperaturePoint, error)
	UpdatePoint(ctx context.Context, id string, req PointRequest) (*TemperaturePoint, error)
	DeletePoint(ctx context.Context, id string) error

	ListReadings(ctx context.Context, req ListReadingRequest) ([]TemperatureReading, error)
	CreateReading(ctx context.Context, req CreateReadingRequest) (*CreateReadingResponse, error)
	DeleteReading(ctx context.Context, id string) error
}

type ListPointRequest struct {
	Type   string
	Active *bool
}

type PointRequest struct {
	Name     *string  `json:"name"`
	Location *string  `json:"location"`
	Type     *string  `json:"type"`
	MinTemp  *float64 `json:"min_temp"`
	MaxTemp  *float64 `json:"max_temp"`
	Active   *bool    `json:"active"`
}

type ListReadingRequest struct {
	TemperaturePointID string
	PointID            snowflake.ID
	IsCompliant        *bool
	From               *time.Time
	To                 *time.Time
	Limit              int
}

type CreateReadingRequest struct {
	TemperaturePointID string     `json:"temperature_point_id"`
	Temperature        *float64   `json:"temperature"`
	MeasuredAt         *time.Time `json:"measured_at"`
	Notes              *string    `json:"notes"`
}

type CreateReadingResponse struct {
	Reading            TemperatureReading `json:"reading"`
	CorrectiveActionID *string            `json:"corrective_action_id,omitempty"`
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidType        = errors.New("invalid_type")
	ErrInvalidLimits      = errors.New("invalid_limits")
	ErrInvalidPoint       = errors.New("invalid_temperature_point_id")
	ErrInactivePoint      = errors.New("inactive_temperature_point")
	ErrInvalidTemperature = errors.New("invalid_temperature")
	ErrPointInUse         = errors.New("temperature_point_in_use")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
)
