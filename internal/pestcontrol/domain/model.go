package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PointType string

const (
	PointTypeBaitStation PointType = "BAIT_STATION"
	PointTypeInsectLamp  PointType = "INSECT_LAMP"
	PointTypeTrap        PointType = "TRAP"
	PointTypeOther       PointType = "OTHER"
)

type CheckStatus string

const (
	CheckStatusOK               CheckStatus = "OK"
	CheckStatusActivityDetected CheckStatus = "ACTIVITY_DETECTED"
	CheckStatusRequiresService  CheckStatus = "REQUIRES_SERVICE"
	CheckStatusDamaged          CheckStatus = "DAMAGED"
	CheckStatusMissing          CheckStatus = "MISSING"
)

type PestControlPoint struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Code      string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_pest_control_points_code"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Location  *string      `json:"location,omitempty" gorm:"type:text"`
	Type      PointType    `json:"type" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (PestControlPoint) TableName() string { return "pest_control_points" }

type PestControlCheck struct {
	ID          snowflake.ID  `json:"id" gorm:"primaryKey"`
	PointID     snowflake.ID  `json:"point_id" gorm:"not null;index"`
	CheckedAt   time.Time     `json:"checked_at" gorm:"not null;index"`
	Status      CheckStatus   `json:"status" gorm:"type:text;not null"`
	Findings    *string       `json:"findings,omitempty" gorm:"type:text"`
	ActionTaken *string       `json:"action_taken,omitempty" gorm:"type:text"`
	CheckedBy   *snowflake.ID `json:"checked_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"not null"`

	Point *PestControlPoint `json:"point,omitempty" gorm:"foreignKey:PointID"`
}

func (PestControlCheck) TableName() string { return "pest_control_checks" }

func ParsePointType(value string) (PointType, bool) {
	switch t := PointType(value); t {
	case PointTypeBaitStation, PointTypeInsectLamp, PointTypeTrap, PointTypeOther:
		return t, true
	default:
		return "", false
	}
}

func ParseCheckStatus(value string) (CheckStatus, bool) {
	switch s := CheckStatus(value); s {
	case CheckStatusOK, CheckStatusActivityDetected, CheckStatusRequiresService, CheckStatusDamaged, CheckStatusMissing:
		return s, true
	default:
		return "", false
	}
}
