package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, action *CorrectiveAction) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CorrectiveAction, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]CorrectiveAction, error)
	ListBySource(ctx context.Context, db *gorm.DB, sourceType string, sourceID snowflake.ID) ([]CorrectiveAction, error)
	CountOpenByPriority(ctx context.Context, db *gorm.DB) (map[Priority]int64, error)
	Update(ctx context.Context, db *gorm.DB, action *CorrectiveAction) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
