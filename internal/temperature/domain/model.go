package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PointType string

const (
	PointCooler  PointType = "COOLER"
	PointFreezer PointType = "FREEZER"
	PointProcess PointType = "PROCESS"
	PointRoom    PointType = "ROOM"
	PointOther   PointType = "OTHER"
)

// TemperaturePoint is a monitored location with static inclusive limits.
type TemperaturePoint struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Location  *string      `json:"location,omitempty" gorm:"type:text"`
	Type      PointType    `json:"type" gorm:"type:text;not null"`
	MinTemp   float64      `json:"min_temp" gorm:"type:numeric(6,2);not null"`
	MaxTemp   float64      `json:"max_temp" gorm:"type:numeric(6,2);not null"`
	Active    bool         `json:"active" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (TemperaturePoint) TableName() string { return "temperature_points" }

// TemperatureReading is immutable. IsCompliant is derived from the point's
// limits at write time and never recomputed.
type TemperatureReading struct {
	ID                 snowflake.ID  `json:"id" gorm:"primaryKey"`
	TemperaturePointID snowflake.ID  `json:"temperature_point_id" gorm:"not null;index:idx_temperature_readings_point,priority:1"`
	Temperature        float64       `json:"temperature" gorm:"type:numeric(6,2);not null"`
	MeasuredAt         time.Time     `json:"measured_at" gorm:"not null;index:idx_temperature_readings_point,priority:2"`
	IsCompliant        bool          `json:"is_compliant" gorm:"not null"`
	Notes              *string       `json:"notes,omitempty" gorm:"type:text"`
	RecordedBy         *snowflake.ID `json:"recorded_by,omitempty"`
	CreatedAt          time.Time     `json:"created_at" gorm:"not null"`

	Point *TemperaturePoint `json:"temperature_point,omitempty" gorm:"foreignKey:TemperaturePointID"`
}

func (TemperatureReading) TableName() string { return "temperature_readings" }

func ParsePointType(value string) (PointType, bool) {
	switch t := PointType(value); t {
	case PointCooler, PointFreezer, PointProcess, PointRoom, PointOther:
		return t, true
	default:
		return "", false
	}
}
