package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// CorrectiveAction is a remediation task opened by hand or by a write path
// that detected a non-compliance. SourceType/SourceID point at that record.
type CorrectiveAction struct {
	ID                snowflake.ID  `json:"id" gorm:"primaryKey"`
	Title             string        `json:"title" gorm:"type:text;not null"`
	Description       string        `json:"description" gorm:"type:text;not null"`
	Cause             *string       `json:"cause,omitempty" gorm:"type:text"`
	ActionTaken       *string       `json:"action_taken,omitempty" gorm:"type:text"`
	Status            Status        `json:"status" gorm:"type:text;not null;index"`
	Priority          Priority      `json:"priority" gorm:"type:text;not null;index"`
	SourceType        *string       `json:"source_type,omitempty" gorm:"type:text;index:idx_corrective_actions_source,priority:1"`
	SourceID          *snowflake.ID `json:"source_id,omitempty" gorm:"index:idx_corrective_actions_source,priority:2"`
	CCPID             *snowflake.ID `json:"ccp_id,omitempty" gorm:"column:ccp_id"`
	AssignedTo        *snowflake.ID `json:"assigned_to,omitempty"`
	DueDate           *time.Time    `json:"due_date,omitempty"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
	VerificationNotes *string       `json:"verification_notes,omitempty" gorm:"type:text"`
	CreatedBy         *snowflake.ID `json:"created_by,omitempty"`
	CreatedAt         time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time     `json:"updated_at" gorm:"not null"`
}

func (CorrectiveAction) TableName() string { return "corrective_actions" }

// ParsePriority normalises a user supplied priority.
func ParsePriority(value string) (Priority, bool) {
	switch p := Priority(normalize(value)); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, true
	default:
		return "", false
	}
}

// ParseStatus normalises a user supplied status.
func ParseStatus(value string) (Status, bool) {
	switch s := Status(normalize(value)); s {
	case StatusOpen, StatusInProgress, StatusCompleted:
		return s, true
	default:
		return "", false
	}
}

// CanTransition reports whether a status may move from -> to. Statuses only
// move forward and COMPLETED is final.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusOpen:
		return to == StatusInProgress || to == StatusCompleted
	case StatusInProgress:
		return to == StatusCompleted
	default:
		return false
	}
}
