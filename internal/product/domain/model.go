package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Product is a finished good made on the line. Code keys per-product thermal
// overrides in the compliance configuration.
type Product struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	Code        string            `json:"code" gorm:"type:text;not null;uniqueIndex:ux_products_code"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Category    *string           `json:"category,omitempty" gorm:"type:text"`
	Unit        string            `json:"unit" gorm:"type:text;not null"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Active      bool              `json:"active" gorm:"not null"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }
