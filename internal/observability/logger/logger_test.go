package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/haccp/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsRequestAndActor(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "user", "42")

	WithContext(ctx, base).Info("temperature_reading_created")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "user", fields["actor_type"])
	require.Equal(t, "42", fields["actor_id"])
}

func TestDescribeSQL(t *testing.T) {
	cases := []struct {
		sql   string
		verb  string
		table string
	}{
		{`UPDATE "material_receipts" SET quantity = quantity - $1`, "UPDATE", "material_receipts"},
		{"SELECT count(*) FROM curing_batches WHERE batch_number LIKE $1", "SELECT", "curing_batches"},
		{"INSERT INTO `waste_records` (`id`) VALUES (?)", "INSERT", "waste_records"},
		{"BEGIN", "UNKNOWN", ""},
	}
	for _, tc := range cases {
		verb, table := describeSQL(tc.sql)
		assert.Equal(t, tc.verb, verb, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}

func TestQueryLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewQueryLogger(zap.New(core), false, 100*time.Millisecond)
	sql := func() (string, int64) { return "SELECT * FROM users WHERE id = $1", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	require.Empty(t, logs.All())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	l.Trace(context.Background(), time.Now(), sql, errors.New("connection reset"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "users", entries[1].ContextMap()["table"])
	assert.Equal(t, "gorm", entries[1].ContextMap()["component"])

	logs.TakeAll()
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	require.Empty(t, logs.All())
}
