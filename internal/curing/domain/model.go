package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	"gorm.io/datatypes"
)

type Method string

const (
	MethodDry       Method = "DRY"
	MethodInjection Method = "INJECTION"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

const (
	DeductionNotRequired = "NOT_REQUIRED"
	DeductionNoMaterial  = "NO_MATERIAL"
)

// SaltDeduction summarises what happened to curing-salt stock when the batch
// was created.
type SaltDeduction struct {
	Status     string                          `json:"status"`
	MaterialID *snowflake.ID                   `json:"material_id,omitempty"`
	Result     *materialdomain.DeductionResult `json:"result,omitempty"`
}

type CuringBatch struct {
	ID                     snowflake.ID                      `json:"id" gorm:"primaryKey"`
	BatchNumber            string                            `json:"batch_number" gorm:"type:text;not null;uniqueIndex:ux_curing_batches_batch_number"`
	ReceptionID            snowflake.ID                      `json:"reception_id" gorm:"not null;index"`
	MeatDescription        *string                           `json:"meat_description,omitempty" gorm:"type:text"`
	Quantity               decimal.Decimal                   `json:"quantity" gorm:"type:numeric(12,3);not null"`
	Method                 Method                            `json:"curing_method" gorm:"column:curing_method;type:text;not null"`
	SaltPercentage         *decimal.Decimal                  `json:"salt_percentage,omitempty" gorm:"type:numeric(6,3)"`
	CuringSaltAmount       *decimal.Decimal                  `json:"curing_salt_amount,omitempty" gorm:"type:numeric(12,3)"`
	InjectionPercentage    *decimal.Decimal                  `json:"injection_percentage,omitempty" gorm:"type:numeric(6,3)"`
	BrineQuantity          *decimal.Decimal                  `json:"brine_quantity,omitempty" gorm:"type:numeric(12,3)"`
	BrineSaltConcentration *decimal.Decimal                  `json:"brine_salt_concentration,omitempty" gorm:"type:numeric(6,3)"`
	StartDate              time.Time                         `json:"start_date" gorm:"not null;index"`
	PlannedEndDate         time.Time                         `json:"planned_end_date" gorm:"not null"`
	ActualEndDate          *time.Time                        `json:"actual_end_date,omitempty"`
	Temperature            *float64                          `json:"temperature,omitempty" gorm:"type:numeric(6,2)"`
	Status                 Status                            `json:"status" gorm:"type:text;not null;index"`
	Notes                  *string                           `json:"notes,omitempty" gorm:"type:text"`
	SaltDeduction          datatypes.JSONType[SaltDeduction] `json:"salt_deduction"`
	CreatedBy              *snowflake.ID                     `json:"created_by,omitempty"`
	CreatedAt              time.Time                         `json:"created_at" gorm:"not null"`
	UpdatedAt              time.Time                         `json:"updated_at" gorm:"not null"`

	Reception *receptiondomain.Reception `json:"reception,omitempty" gorm:"foreignKey:ReceptionID"`
}

func (CuringBatch) TableName() string { return "curing_batches" }

func ParseMethod(value string) (Method, bool) {
	switch m := Method(value); m {
	case MethodDry, MethodInjection:
		return m, true
	default:
		return "", false
	}
}

func ParseStatus(value string) (Status, bool) {
	switch s := Status(value); s {
	case StatusInProgress, StatusCompleted, StatusCancelled:
		return s, true
	default:
		return "", false
	}
}
