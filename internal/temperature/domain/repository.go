package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreatePoint(ctx context.Context, db *gorm.DB, point *TemperaturePoint) error
	FindPointByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TemperaturePoint, error)
	ListPoints(ctx context.Context, db *gorm.DB, filter ListPointRequest) ([]TemperaturePoint, error)
	UpdatePoint(ctx context.Context, db *gorm.DB, point *TemperaturePoint) error
	DeletePoint(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	CountReadings(ctx context.Context, db *gorm.DB, pointID snowflake.ID) (int64, error)

	CreateReading(ctx context.Context, db *gorm.DB, reading *TemperatureReading) error
	FindReadingByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TemperatureReading, error)
	ListReadings(ctx context.Context, db *gorm.DB, filter ListReadingRequest) ([]TemperatureReading, error)
	CountNonCompliantSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error)
	DeleteReading(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
