package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Frequency string

const (
	FrequencyAfterProduction Frequency = "AFTER_PRODUCTION"
	FrequencyDaily           Frequency = "DAILY"
	FrequencyWeekly          Frequency = "WEEKLY"
	FrequencyMonthly         Frequency = "MONTHLY"
)

type CleaningArea struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Description *string      `json:"description,omitempty" gorm:"type:text"`
	Frequency   Frequency    `json:"frequency" gorm:"type:text;not null"`
	Method      *string      `json:"method,omitempty" gorm:"type:text"`
	Agent       *string      `json:"agent,omitempty" gorm:"type:text"`
	Active      bool         `json:"active" gorm:"not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (CleaningArea) TableName() string { return "cleaning_areas" }

// CleaningRecord documents one cleaning and disinfection run of an area.
type CleaningRecord struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	CleaningAreaID snowflake.ID  `json:"cleaning_area_id" gorm:"not null;index"`
	PerformedAt    time.Time     `json:"performed_at" gorm:"not null;index"`
	Method         *string       `json:"method,omitempty" gorm:"type:text"`
	Agent          *string       `json:"agent,omitempty" gorm:"type:text"`
	Concentration  *string       `json:"concentration,omitempty" gorm:"type:text"`
	IsEffective    bool          `json:"is_effective" gorm:"not null"`
	VerifiedBy     *string       `json:"verified_by,omitempty" gorm:"type:text"`
	Notes          *string       `json:"notes,omitempty" gorm:"type:text"`
	PerformedBy    *snowflake.ID `json:"performed_by,omitempty"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"not null"`
}

func (CleaningRecord) TableName() string { return "cleaning_records" }

func ParseFrequency(value string) (Frequency, bool) {
	switch f := Frequency(value); f {
	case FrequencyAfterProduction, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return f, true
	default:
		return "", false
	}
}
