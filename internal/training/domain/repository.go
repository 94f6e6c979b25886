package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Topic string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, record *TrainingRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TrainingRecord, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]TrainingRecord, error)
	Update(ctx context.Context, db *gorm.DB, record *TrainingRecord) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	AddParticipant(ctx context.Context, db *gorm.DB, participant *TrainingParticipant) error
	FindParticipant(ctx context.Context, db *gorm.DB, trainingID, id snowflake.ID) (*TrainingParticipant, error)
	UpdateParticipant(ctx context.Context, db *gorm.DB, participant *TrainingParticipant) error
	DeleteParticipant(ctx context.Context, db *gorm.DB, trainingID, id snowflake.ID) (int64, error)
}
