package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Supplier struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	Name          string       `json:"name" gorm:"type:text;not null"`
	Address       *string      `json:"address,omitempty" gorm:"type:text"`
	TaxID         *string      `json:"tax_id,omitempty" gorm:"column:tax_id;type:text"`
	VetNumber     *string      `json:"vet_number,omitempty" gorm:"type:text"`
	ContactPerson *string      `json:"contact_person,omitempty" gorm:"type:text"`
	Phone         *string      `json:"phone,omitempty" gorm:"type:text"`
	Email         *string      `json:"email,omitempty" gorm:"type:text"`
	Approved      bool         `json:"approved" gorm:"not null"`
	Active        bool         `json:"active" gorm:"not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null"`
}

func (Supplier) TableName() string { return "suppliers" }

type RawMaterial struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	Name           string        `json:"name" gorm:"type:text;not null"`
	Category       *string       `json:"category,omitempty" gorm:"type:text"`
	Unit           string        `json:"unit" gorm:"type:text;not null"`
	SupplierID     *snowflake.ID `json:"supplier_id,omitempty" gorm:"index"`
	StorageMinTemp *float64      `json:"storage_min_temp,omitempty" gorm:"type:numeric(6,2)"`
	StorageMaxTemp *float64      `json:"storage_max_temp,omitempty" gorm:"type:numeric(6,2)"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"not null"`
}

func (RawMaterial) TableName() string { return "raw_materials" }

// Reception is one delivery of a raw material. IsCompliant is the verdict of
// the receiving employee and is not derived from the other fields.
type Reception struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	RawMaterialID snowflake.ID  `json:"raw_material_id" gorm:"not null;index"`
	SupplierID    snowflake.ID  `json:"supplier_id" gorm:"not null;index"`
	BatchNumber   string        `json:"batch_number" gorm:"type:text;not null"`
	Quantity      float64       `json:"quantity" gorm:"type:numeric(12,3);not null"`
	Unit          string        `json:"unit" gorm:"type:text;not null"`
	ReceivedAt    time.Time     `json:"received_at" gorm:"not null;index"`
	Temperature   *float64      `json:"temperature,omitempty" gorm:"type:numeric(6,2)"`
	ExpiryDate    *time.Time    `json:"expiry_date,omitempty"`
	DocumentNo    *string       `json:"document_number,omitempty" gorm:"column:document_number;type:text"`
	IsCompliant   bool          `json:"is_compliant" gorm:"not null"`
	Notes         *string       `json:"notes,omitempty" gorm:"type:text"`
	ReceivedBy    *snowflake.ID `json:"received_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"not null"`

	RawMaterial *RawMaterial `json:"raw_material,omitempty" gorm:"foreignKey:RawMaterialID"`
	Supplier    *Supplier    `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Reception) TableName() string { return "receptions" }
