package domain

import (
	"context"
	"errors"
	"time"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Service interface {
	AuditReportPDF(ctx context.Context, recordID string) (*File, error)
	BatchLabelPDF(ctx context.Context, batchID string) (*File, error)
	TemperatureLogPDF(ctx context.Context, req TemperatureLogRequest) (*File, error)
	TemperatureLogXLSX(ctx context.Context, req TemperatureLogRequest) (*File, error)
	CorrectiveActionsXLSX(ctx context.Context, req CorrectiveActionRequest) (*File, error)
}

// File is a rendered report held in memory until it is streamed out.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type TemperatureLogRequest struct {
	TemperaturePointID string
	From               *time.Time
	To                 *time.Time
}

type CorrectiveActionRequest struct {
	Status   string
	Priority string
	From     *time.Time
	To       *time.Time
}

var (
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidPoint    = errors.New("invalid_temperature_point_id")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidPriority = errors.New("invalid_priority")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
)
