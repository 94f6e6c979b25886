package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository reads and appends activity entries. There is no update or
// delete; the log is append-only.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	// List returns up to one entry more than the page size, newest first.
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Entry, error)
}
