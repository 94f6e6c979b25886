package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// WasteType is a catalogue entry, keyed by its waste code (e.g. "02 02 02").
type WasteType struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Code        string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_waste_types_code"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Category    *string      `json:"category,omitempty" gorm:"type:text"`
	Description *string      `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (WasteType) TableName() string { return "waste_types" }

type WasteCollector struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	Address      *string      `json:"address,omitempty" gorm:"type:text"`
	Phone        *string      `json:"phone,omitempty" gorm:"type:text"`
	Email        *string      `json:"email,omitempty" gorm:"type:text"`
	PermitNumber *string      `json:"permit_number,omitempty" gorm:"type:text"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

func (WasteCollector) TableName() string { return "waste_collectors" }

type WasteRecord struct {
	ID             snowflake.ID    `json:"id" gorm:"primaryKey"`
	WasteTypeID    snowflake.ID    `json:"waste_type_id" gorm:"not null;index"`
	CollectorID    *snowflake.ID   `json:"collector_id,omitempty" gorm:"index"`
	Quantity       decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3);not null"`
	Unit           string          `json:"unit" gorm:"type:text;not null"`
	DisposalDate   time.Time       `json:"disposal_date" gorm:"not null;index"`
	DocumentNumber *string         `json:"document_number,omitempty" gorm:"type:text"`
	Notes          *string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy      *snowflake.ID   `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"not null"`
}

func (WasteRecord) TableName() string { return "waste_records" }
