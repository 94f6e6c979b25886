package option

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/haccp/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before it is executed.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryOptionFunc func(db *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

type Operator string

const (
	EQ   Operator = "="
	NEQ  Operator = "<>"
	GT   Operator = ">"
	GTE  Operator = ">="
	LT   Operator = "<"
	LTE  Operator = "<="
	LIKE Operator = "LIKE"
	IN   Operator = "IN"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a single comparison. Unknown operators and field names
// that are not plain column identifiers are ignored.
func ApplyOperator(cond Condition) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if !isColumn(cond.Field) {
			return db
		}
		switch cond.Operator {
		case EQ, NEQ, GT, GTE, LT, LTE, LIKE:
			return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
		case IN:
			return db.Where(fmt.Sprintf("%s IN ?", cond.Field), cond.Value)
		default:
			return db
		}
	})
}

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

func WithQuerySortBy(sortBy, orderBy string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{
		SortBy:  strings.ToLower(strings.TrimSpace(sortBy)),
		OrderBy: strings.ToLower(strings.TrimSpace(orderBy)),
		Allow:   allow,
	}
}

// WithSortBy orders by the requested column when allowed. Without a valid
// request it falls back to created_at descending, then to the id.
func WithSortBy(sort QuerySortBy) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		direction := "desc"
		if sort.OrderBy == "asc" {
			direction = "asc"
		}

		column := sort.SortBy
		if column == "" || !sort.Allow[column] || !isColumn(column) {
			column = ""
			if sort.Allow["created_at"] {
				column = "created_at"
			}
		}
		if column == "" {
			return db.Order("id " + direction)
		}
		return db.Order(column + " " + direction).Order("id " + direction)
	})
}

func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// WithKeyset continues a newest-first listing after cursor and fetches one
// row beyond size so pagination.Page can tell whether more rows exist.
func WithKeyset(cursor *pagination.Cursor, size int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if cursor != nil {
			db = db.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
		return db.Order("created_at desc").Order("id desc").Limit(size + 1)
	})
}

func isColumn(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
