package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]CorrectiveAction, error)
	Get(ctx context.Context, id string) (*CorrectiveAction, error)
	Create(ctx context.Context, req CreateRequest) (*CorrectiveAction, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*CorrectiveAction, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Status     Status
	Priority   Priority
	SourceType string
	From       *time.Time
	To         *time.Time
	SortBy     string
	OrderBy    string
}

type CreateRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Cause             *string    `json:"cause"`
	ActionTaken       *string    `json:"action_taken"`
	Priority          string     `json:"priority"`
	CCPID             *string    `json:"ccp_id"`
	AssignedTo        *string    `json:"assigned_to"`
	DueDate           *time.Time `json:"due_date"`
	VerificationNotes *string    `json:"verification_notes"`
}

type UpdateRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	Cause             *string    `json:"cause"`
	ActionTaken       *string    `json:"action_taken"`
	Status            *string    `json:"status"`
	Priority          *string    `json:"priority"`
	AssignedTo        *string    `json:"assigned_to"`
	DueDate           *time.Time `json:"due_date"`
	VerificationNotes *string    `json:"verification_notes"`
}

var (
	ErrInvalidTitle       = errors.New("invalid_title")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidPriority    = errors.New("invalid_priority")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidAssignee    = errors.New("invalid_assigned_to")
	ErrInvalidCCP         = errors.New("invalid_ccp_id")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
)

func normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
