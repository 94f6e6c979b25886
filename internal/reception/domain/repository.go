package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, reception *Reception) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reception, error)
	List(ctx context.Context, db *gorm.DB, filter ReceptionFilter) ([]Reception, error)
	Update(ctx context.Context, db *gorm.DB, reception *Reception) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	CountReceivedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
	CountBySupplier(ctx context.Context, db *gorm.DB, supplierID snowflake.ID) (int64, error)
	CountByRawMaterial(ctx context.Context, db *gorm.DB, rawMaterialID snowflake.ID) (int64, error)
}
