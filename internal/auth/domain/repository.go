package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *User) error
	FindOne(ctx context.Context, user User) (*User, error)
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]User, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}

type ListFilter struct {
	Role   Role
	Active *bool
}
