package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, batch *ProductionBatch) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ProductionBatch, error)
	List(ctx context.Context, db *gorm.DB, filter BatchFilter) ([]ProductionBatch, error)
	// Transition writes batch only while the stored status is still from and
	// reports whether it did.
	Transition(ctx context.Context, db *gorm.DB, batch *ProductionBatch, from Status) (bool, error)
	ReplaceMaterials(ctx context.Context, db *gorm.DB, batchID snowflake.ID, materials []BatchMaterial) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	// BatchNumbersWithPrefix returns every batch number starting with prefix-.
	BatchNumbersWithPrefix(ctx context.Context, db *gorm.DB, prefix string) ([]string, error)
	CountByStatus(ctx context.Context, db *gorm.DB, status Status) (int64, error)
}
