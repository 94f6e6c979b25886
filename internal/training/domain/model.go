package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type TrainingRecord struct {
	ID            snowflake.ID          `json:"id" gorm:"primaryKey"`
	Title         string                `json:"title" gorm:"type:text;not null"`
	Topic         *string               `json:"topic,omitempty" gorm:"type:text"`
	Trainer       string                `json:"trainer" gorm:"type:text;not null"`
	TrainingDate  time.Time             `json:"training_date" gorm:"not null;index"`
	DurationHours *decimal.Decimal      `json:"duration_hours,omitempty" gorm:"type:numeric(6,2)"`
	Notes         *string               `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy     *snowflake.ID         `json:"created_by,omitempty"`
	CreatedAt     time.Time             `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time             `json:"updated_at" gorm:"not null"`
	Participants  []TrainingParticipant `json:"participants,omitempty" gorm:"foreignKey:TrainingID"`
}

func (TrainingRecord) TableName() string { return "training_records" }

type TrainingParticipant struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	TrainingID snowflake.ID  `json:"training_id" gorm:"not null;index"`
	UserID     *snowflake.ID `json:"user_id,omitempty" gorm:"index"`
	Name       string        `json:"name" gorm:"type:text;not null"`
	Passed     bool          `json:"passed" gorm:"not null"`
	Notes      *string       `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time     `json:"updated_at" gorm:"not null"`
}

func (TrainingParticipant) TableName() string { return "training_participants" }
