package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	// MySQL 1062
	if strings.Contains(msg, "Error 1062") {
		return true
	}
	// SQLite 2067
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	return strings.Contains(msg, "duplicate key value violates unique constraint")
}

// IsForeignKeyErr reports a delete or insert rejected by a foreign key.
func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}

	msg := err.Error()
	// MySQL 1451/1452
	if strings.Contains(msg, "Error 1451") || strings.Contains(msg, "Error 1452") {
		return true
	}
	return strings.Contains(msg, "FOREIGN KEY constraint failed")
}
