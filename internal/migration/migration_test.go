package migration

import (
	"io/fs"
	"testing"

	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestAutoMigrateCreatesEveryTable(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(conn))

	for _, table := range []string{"users", "temperature_readings", "curing_batches", "production_batch_materials", "waste_records", "activity_logs"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}
