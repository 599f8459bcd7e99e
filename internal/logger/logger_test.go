package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	core, logs := observer.New(level)
	t.Cleanup(Replace(zap.New(core)))
	return logs
}

func TestLevels(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)
	ctx := context.Background()

	Debug("debug", zap.Int("n", 1))
	InfoCtx(ctx, "info")
	WarnCtx(ctx, "warn")
	ErrorCtx(ctx, errors.New("reduce failed"), zap.String("unit_id", "2024_01_01"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "reduce failed", entries[3].Message)
	assert.Equal(t, "2024_01_01", entries[3].ContextMap()["unit_id"])
}

func TestError_Nil(t *testing.T) {
	logs := observe(t, zapcore.ErrorLevel)

	Error(nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "error occurred", logs.All()[0].Message)
}

func TestReplace_Restores(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	Info("captured")
	restore()
	Info("dropped")

	assert.Equal(t, 1, logs.Len())
}

func TestInitialize_WithoutSentry(t *testing.T) {
	t.Cleanup(Replace(zap.NewNop()))

	require.NoError(t, Initialize(Config{Debug: true, Environment: "test", Tags: map[string]string{"service": "gpp-test"}}))
	assert.True(t, Default().Core().Enabled(zapcore.DebugLevel))
	assert.Nil(t, sentryClient)
}
