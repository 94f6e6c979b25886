package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	ListChecklists(ctx context.Context, req ListChecklistRequest) ([]AuditChecklist, error)
	GetChecklist(ctx context.Context, id string) (*AuditChecklist, error)
	CreateChecklist(ctx context.Context, req ChecklistRequest) (*AuditChecklist, error)
	UpdateChecklist(ctx context.Context, id string, req ChecklistRequest) (*AuditChecklist, error)
	DeleteChecklist(ctx context.Context, id string) error

	ListRecords(ctx context.Context, req ListRecordRequest) ([]AuditRecord, error)
	GetRecord(ctx context.Context, id string) (*AuditRecord, error)
	CreateRecord(ctx context.Context, req RecordRequest) (*RecordResponse, error)
	UpdateRecord(ctx context.Context, id string, req RecordRequest) (*RecordResponse, error)
	DeleteRecord(ctx context.Context, id string) error
}

type ListChecklistRequest struct {
	Category string
	Active   *bool
}

type ChecklistRequest struct {
	Name     *string   `json:"name"`
	Category *string   `json:"category"`
	Items    *[]string `json:"items"`
	Active   *bool     `json:"active"`
}

type ListRecordRequest struct {
	ChecklistID string
	From        *time.Time
	To          *time.Time
}

// RecordRequest carries either Results or a precomputed Score. Score is
// ignored whenever results are present.
type RecordRequest struct {
	ChecklistID *string    `json:"checklist_id"`
	AuditDate   *time.Time `json:"audit_date"`
	Auditor     *string    `json:"auditor"`
	Results     Results    `json:"results"`
	Score       *int       `json:"score"`
	Notes       *string    `json:"notes"`
}

type RecordResponse struct {
	Record             AuditRecord `json:"record"`
	CorrectiveActionID *string     `json:"corrective_action_id,omitempty"`
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidItems     = errors.New("invalid_items")
	ErrInvalidChecklist = errors.New("invalid_checklist_id")
	ErrInvalidAuditor   = errors.New("invalid_auditor")
	ErrInvalidScore     = errors.New("invalid_score")
	ErrInvalidResults   = errors.New("invalid_results")
	ErrChecklistInUse   = errors.New("checklist_in_use")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidID        = errors.New("invalid_id")
)
