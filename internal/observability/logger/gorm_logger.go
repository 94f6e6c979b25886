package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// QueryLogger routes GORM output through zap. Bound parameters are never
// logged; receipts and users carry personal data.
type QueryLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewQueryLogger logs every statement at debug when verbose is set, and
// otherwise only failures and statements slower than slow.
func NewQueryLogger(base *zap.Logger, verbose bool, slow time.Duration) *QueryLogger {
	if base == nil {
		base = zap.NewNop()
	}
	level := gormlogger.Warn
	if verbose {
		level = gormlogger.Info
	}
	return &QueryLogger{
		base:  base.With(zap.String("component", "gorm")),
		level: level,
		slow:  slow,
	}
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *QueryLogger) message(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.level < min {
		return
	}
	var fields []zap.Field
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	if ce := WithContext(ctx, l.base).Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

// Trace is called by GORM after every statement.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	level, ok := l.statementLevel(elapsed, err)
	if !ok {
		return
	}

	sql, rows := fc()
	verb, table := describeSQL(sql)
	fields := []zap.Field{
		zap.String("sql", strings.TrimSpace(sql)),
		zap.String("operation", verb),
		zap.String("table", table),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if ce := WithContext(ctx, l.base).Check(level, "gorm.query"); ce != nil {
		ce.Write(fields...)
	}
}

// statementLevel picks the zap level for a finished statement. Lookups by id
// miss routinely, so record-not-found is never reported as a failure.
func (l *QueryLogger) statementLevel(elapsed time.Duration, err error) (zapcore.Level, bool) {
	switch {
	case l.level <= gormlogger.Silent:
		return 0, false
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		return zapcore.ErrorLevel, true
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		return zapcore.WarnLevel, true
	case l.level >= gormlogger.Info:
		return zapcore.DebugLevel, true
	}
	return 0, false
}

// ParamsFilter drops bound values from GORM's own error messages.
func (l *QueryLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

// describeSQL returns the statement verb and the first table it touches.
func describeSQL(sql string) (string, string) {
	verb, table := "UNKNOWN", ""
	tokens := strings.Fields(sql)
	for i, token := range tokens {
		upper := strings.ToUpper(strings.Trim(token, "();"))
		switch upper {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			if verb == "UNKNOWN" {
				verb = upper
			}
		}
		switch upper {
		case "FROM", "INTO", "UPDATE":
			if table == "" && i+1 < len(tokens) {
				table = strings.Trim(tokens[i+1], "`\"();")
			}
		}
	}
	return verb, table
}

var _ gormlogger.Interface = (*QueryLogger)(nil)
