package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, batch *CuringBatch) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CuringBatch, error)
	List(ctx context.Context, db *gorm.DB, filter BatchFilter) ([]CuringBatch, error)
	// Transition writes batch only while the stored status is still from and
	// reports whether it did.
	Transition(ctx context.Context, db *gorm.DB, batch *CuringBatch, from Status) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	// BatchNumbersWithBase returns base itself and every base-N number in use.
	BatchNumbersWithBase(ctx context.Context, db *gorm.DB, base string) ([]string, error)
	CountByStatus(ctx context.Context, db *gorm.DB, status Status) (int64, error)
}
