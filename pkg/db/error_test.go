package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert curing batch: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: curing_batches.batch_number")))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062: Duplicate entry '12-03' for key 'batch_number'")))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}

func TestIsForeignKeyErr(t *testing.T) {
	assert.False(t, IsForeignKeyErr(nil))
	assert.True(t, IsForeignKeyErr(gorm.ErrForeignKeyViolated))
	assert.True(t, IsForeignKeyErr(fmt.Errorf("delete reception: %w", &pgconn.PgError{Code: "23503"})))
	assert.False(t, IsForeignKeyErr(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsForeignKeyErr(errors.New("FOREIGN KEY constraint failed")))
	assert.True(t, IsForeignKeyErr(errors.New("Error 1451: Cannot delete or update a parent row")))
}
