package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Category string

const (
	CategoryProcedure   Category = "PROCEDURE"
	CategoryInstruction Category = "INSTRUCTION"
	CategoryForm        Category = "FORM"
	CategoryPlan        Category = "PLAN"
	CategoryCertificate Category = "CERTIFICATE"
	CategoryOther       Category = "OTHER"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Document is a controlled document of the food safety system. Only the
// location of the file is kept.
type Document struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	Code          string        `json:"code" gorm:"type:text;not null;uniqueIndex:ux_documents_code"`
	Title         string        `json:"title" gorm:"type:text;not null"`
	Category      Category      `json:"category" gorm:"type:text;not null;index"`
	Version       string        `json:"version" gorm:"type:text;not null"`
	FileURL       *string       `json:"file_url,omitempty" gorm:"type:text;column:file_url"`
	EffectiveDate *time.Time    `json:"effective_date,omitempty"`
	ReviewDate    *time.Time    `json:"review_date,omitempty"`
	Status        Status        `json:"status" gorm:"type:text;not null;index"`
	Notes         *string       `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy     *snowflake.ID `json:"created_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"not null"`
}

func (Document) TableName() string { return "documents" }

func ParseCategory(value string) (Category, bool) {
	switch c := Category(value); c {
	case CategoryProcedure, CategoryInstruction, CategoryForm, CategoryPlan, CategoryCertificate, CategoryOther:
		return c, true
	default:
		return "", false
	}
}

func ParseStatus(value string) (Status, bool) {
	switch s := Status(value); s {
	case StatusDraft, StatusActive, StatusArchived:
		return s, true
	default:
		return "", false
	}
}
