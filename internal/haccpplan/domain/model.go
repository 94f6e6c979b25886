package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CCP is a critical control point of the HACCP plan.
type CCP struct {
	ID                  snowflake.ID `json:"id" gorm:"primaryKey"`
	Code                string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_ccps_code"`
	Name                string       `json:"name" gorm:"type:text;not null"`
	ProcessStep         string       `json:"process_step" gorm:"type:text;not null"`
	Hazard              string       `json:"hazard" gorm:"type:text;not null"`
	CriticalLimit       string       `json:"critical_limit" gorm:"type:text;not null"`
	Monitoring          *string      `json:"monitoring,omitempty" gorm:"type:text"`
	CorrectiveProcedure *string      `json:"corrective_procedure,omitempty" gorm:"type:text"`
	Verification        *string      `json:"verification,omitempty" gorm:"type:text"`
	Active              bool         `json:"active" gorm:"not null"`
	CreatedAt           time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time    `json:"updated_at" gorm:"not null"`
}

func (CCP) TableName() string { return "ccps" }

type HazardType string

const (
	HazardBiological HazardType = "BIOLOGICAL"
	HazardChemical   HazardType = "CHEMICAL"
	HazardPhysical   HazardType = "PHYSICAL"
	HazardAllergen   HazardType = "ALLERGEN"
)

// Hazard is an entry of the hazard analysis. RiskScore is severity x likelihood.
type Hazard struct {
	ID              snowflake.ID  `json:"id" gorm:"primaryKey"`
	Name            string        `json:"name" gorm:"type:text;not null"`
	Type            HazardType    `json:"type" gorm:"type:text;not null"`
	ProcessStep     string        `json:"process_step" gorm:"type:text;not null"`
	Severity        int           `json:"severity" gorm:"not null"`
	Likelihood      int           `json:"likelihood" gorm:"not null"`
	RiskScore       int           `json:"risk_score" gorm:"not null"`
	ControlMeasures *string       `json:"control_measures,omitempty" gorm:"type:text"`
	CCPID           *snowflake.ID `json:"ccp_id,omitempty" gorm:"column:ccp_id;index"`
	CreatedAt       time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"not null"`
}

func (Hazard) TableName() string { return "hazards" }

func ParseHazardType(value string) (HazardType, bool) {
	switch t := HazardType(value); t {
	case HazardBiological, HazardChemical, HazardPhysical, HazardAllergen:
		return t, true
	default:
		return "", false
	}
}

// RiskScore multiplies severity by likelihood, both on a 1-5 scale.
func RiskScore(severity, likelihood int) int {
	return severity * likelihood
}
