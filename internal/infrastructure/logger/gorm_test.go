package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

const medicineSelect = `SELECT * FROM "medicines" WHERE "medicines"."id" = 1`

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func traceQuery(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

var _ gormlogger.Interface = (*GormLogger)(nil)

func TestNewGormLogger_Defaults(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Warn)

	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.ignoreRecordNotFoundError)

	gl, _ = newObservedGormLogger(gormlogger.Info,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false))
	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)

	quiet, ok := gl.LogMode(gormlogger.Silent).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Silent, quiet.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Messages(t *testing.T) {
	tests := []struct {
		name  string
		level gormlogger.LogLevel
		log   func(*GormLogger)
		want  zapcore.Level
		count int
	}{
		{"info at info", gormlogger.Info, func(l *GormLogger) { l.Info(context.Background(), "migrated %s", "medicines") }, zapcore.InfoLevel, 1},
		{"info at warn", gormlogger.Warn, func(l *GormLogger) { l.Info(context.Background(), "migrated %s", "medicines") }, zapcore.InfoLevel, 0},
		{"warn at warn", gormlogger.Warn, func(l *GormLogger) { l.Warn(context.Background(), "slow %d", 3) }, zapcore.WarnLevel, 1},
		{"warn at error", gormlogger.Error, func(l *GormLogger) { l.Warn(context.Background(), "slow %d", 3) }, zapcore.WarnLevel, 0},
		{"error at error", gormlogger.Error, func(l *GormLogger) { l.Error(context.Background(), "lost %s", "conn") }, zapcore.ErrorLevel, 1},
		{"error at silent", gormlogger.Silent, func(l *GormLogger) { l.Error(context.Background(), "lost %s", "conn") }, zapcore.ErrorLevel, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl, logs := newObservedGormLogger(tt.level)
			tt.log(gl)

			require.Equal(t, tt.count, logs.Len())
			if tt.count > 0 {
				assert.Equal(t, tt.want, logs.All()[0].Level)
				assert.Equal(t, "gorm", logs.All()[0].LoggerName)
			}
		})
	}
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("query error", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), traceQuery(medicineSelect, 0), assert.AnError)

		entries := logs.FilterMessage("SQL Error").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, medicineSelect, fields["sql"])
		assert.Contains(t, fields, "error")
	})

	t.Run("record not found ignored by default", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), traceQuery(medicineSelect, 0), gormlogger.ErrRecordNotFound)
		assert.Zero(t, logs.Len())
	})

	t.Run("record not found kept when asked", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))
		gl.Trace(context.Background(), time.Now(), traceQuery(medicineSelect, 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())
	})

	t.Run("slow query", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
		gl.Trace(context.Background(), time.Now().Add(-50*time.Millisecond), traceQuery(medicineSelect, 1), nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Contains(t, entry.Message, "SLOW SQL")
	})

	t.Run("normal query logged at debug", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Info)
		gl.Trace(context.Background(), time.Now(), traceQuery(medicineSelect, 1), nil)

		entries := logs.FilterMessage("SQL Query").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.EqualValues(t, 1, entries[0].ContextMap()["rows"])
	})

	t.Run("normal query dropped below info", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Warn)
		gl.Trace(context.Background(), time.Now(), traceQuery(medicineSelect, 1), nil)
		assert.Zero(t, logs.Len())
	})

	t.Run("silent", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), traceQuery(medicineSelect, 0), assert.AnError)
		assert.Zero(t, logs.Len())
	})

	t.Run("request context fields", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Info)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")
		ctx, _ = WithUsername(ctx, zap.NewNop(), "Piyu")
		gl.Trace(ctx, time.Now(), traceQuery(`UPDATE "medicines" SET "quantity"=quantity - 2`, 1), nil)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "Piyu", fields["username"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"verbose": gormlogger.Warn,
		"":        gormlogger.Warn,
	}
	for level, want := range tests {
		assert.Equal(t, want, MapGormLogLevel(level), level)
	}
}
