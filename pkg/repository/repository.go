package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic gorm-backed store for dictionaries and records
// without bespoke query logic. Zero-valued fields of a query are ignored and
// lookups that match nothing return nil without an error.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	FindByID(ctx context.Context, id snowflake.ID) (*T, error)
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	Create(ctx context.Context, resource *T) error
	Save(ctx context.Context, resource *T) error
	Delete(ctx context.Context, id snowflake.ID) (int64, error)
}
