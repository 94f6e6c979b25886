package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/haccp/pkg/db/pagination"
)

type RecordRequest struct {
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

type ListRequest struct {
	pagination.Pagination
	Action     string
	TargetType string
	TargetID   string
	ActorID    string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Entries []Entry `json:"entries"`
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
)
