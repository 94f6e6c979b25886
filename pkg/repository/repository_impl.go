package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

// WithTrx binds the store to tx. A nil tx keeps the current handle.
func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return r
	}
	return &store[T]{db: tx}
}

func (r *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var out []*T
	err := r.scoped(ctx, query, opts).Find(&out).Error
	return out, err
}

func (r *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var out T
	return first(r.scoped(ctx, query, opts), &out)
}

func (r *store[T]) FindByID(ctx context.Context, id snowflake.ID) (*T, error) {
	var out T
	return first(r.db.WithContext(ctx).Where("id = ?", id), &out)
}

func (r *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	var n int64
	err := r.scoped(ctx, query, opts).Count(&n).Error
	return n, err
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *store[T]) Save(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Save(resource).Error
}

// Delete reports how many rows were removed so callers can map zero to
// their own not-found error.
func (r *store[T]) Delete(ctx context.Context, id snowflake.ID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	return res.RowsAffected, res.Error
}

func (r *store[T]) scoped(ctx context.Context, query *T, opts []option.QueryOption) *gorm.DB {
	stmt := r.db.WithContext(ctx).Model(new(T))
	if query != nil {
		stmt = stmt.Where(query)
	}
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}

func first[T any](stmt *gorm.DB, out *T) (*T, error) {
	err := stmt.First(out).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return out, nil
}
