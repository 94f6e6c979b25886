package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]TrainingRecord, error)
	Get(ctx context.Context, id string) (*TrainingRecord, error)
	Create(ctx context.Context, req TrainingRequest) (*TrainingRecord, error)
	Update(ctx context.Context, id string, req TrainingRequest) (*TrainingRecord, error)
	Delete(ctx context.Context, id string) error

	AddParticipant(ctx context.Context, trainingID string, req ParticipantRequest) (*TrainingParticipant, error)
	UpdateParticipant(ctx context.Context, trainingID, id string, req ParticipantRequest) (*TrainingParticipant, error)
	RemoveParticipant(ctx context.Context, trainingID, id string) error
}

type ListRequest struct {
	From  *time.Time
	To    *time.Time
	Topic string
}

type TrainingRequest struct {
	Title         *string              `json:"title"`
	Topic         *string              `json:"topic"`
	Trainer       *string              `json:"trainer"`
	TrainingDate  *time.Time           `json:"training_date"`
	DurationHours *decimal.Decimal     `json:"duration_hours"`
	Notes         *string              `json:"notes"`
	Participants  []ParticipantRequest `json:"participants"`
}

type ParticipantRequest struct {
	UserID *string `json:"user_id"`
	Name   *string `json:"name"`
	Passed *bool   `json:"passed"`
	Notes  *string `json:"notes"`
}

var (
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidTrainer  = errors.New("invalid_trainer")
	ErrInvalidDuration = errors.New("invalid_duration_hours")
	ErrInvalidName     = errors.New("invalid_participant_name")
	ErrInvalidUser     = errors.New("invalid_user_id")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
)
