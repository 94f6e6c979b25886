package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// LabTestType describes an analysis and its acceptable range. Either bound
// may be absent.
type LabTestType struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Category  *string      `json:"category,omitempty" gorm:"type:text"`
	Unit      *string      `json:"unit,omitempty" gorm:"type:text"`
	MinValue  *float64     `json:"min_value,omitempty" gorm:"type:numeric(12,4)"`
	MaxValue  *float64     `json:"max_value,omitempty" gorm:"type:numeric(12,4)"`
	Active    bool         `json:"active" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (LabTestType) TableName() string { return "lab_test_types" }

// Compliant reports whether value falls inside the configured range.
func (t LabTestType) Compliant(value float64) bool {
	if t.MinValue != nil && value < *t.MinValue {
		return false
	}
	if t.MaxValue != nil && value > *t.MaxValue {
		return false
	}
	return true
}

type LabTest struct {
	ID                snowflake.ID  `json:"id" gorm:"primaryKey"`
	TestTypeID        snowflake.ID  `json:"test_type_id" gorm:"not null;index"`
	SampleDescription string        `json:"sample_description" gorm:"type:text;not null"`
	ProductionBatchID *snowflake.ID `json:"production_batch_id,omitempty" gorm:"index"`
	SampledAt         time.Time     `json:"sampled_at" gorm:"not null;index"`
	Laboratory        *string       `json:"laboratory,omitempty" gorm:"type:text"`
	ResultValue       *float64      `json:"result_value,omitempty" gorm:"type:numeric(12,4)"`
	ResultText        *string       `json:"result_text,omitempty" gorm:"type:text"`
	IsCompliant       *bool         `json:"is_compliant,omitempty"`
	Status            Status        `json:"status" gorm:"type:text;not null;index"`
	Notes             *string       `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy         *snowflake.ID `json:"created_by,omitempty"`
	CreatedAt         time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time     `json:"updated_at" gorm:"not null"`
}

func (LabTest) TableName() string { return "lab_tests" }

func ParseStatus(value string) (Status, bool) {
	switch s := Status(value); s {
	case StatusPending, StatusCompleted:
		return s, true
	default:
		return "", false
	}
}
