package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			l := NewLogger(env)
			require.NotNil(t, l)
			l.Info("test message")
		})
	}
}

func TestNewLogger_WithLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	l := NewLogger("production")
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_WithInvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "invalid_level")

	// 無効なレベルは無視される
	l := NewLogger("production")
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestSet(t *testing.T) {
	original := Get()
	defer Set(original)

	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))

	Info("booking confirmed", zap.String("booking_id", "b-1"))
	Warn("seat unavailable")
	Debug("ignored")

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "booking confirmed", entry.Message)
	assert.Equal(t, "b-1", entry.ContextMap()["booking_id"])
}

func TestFromContext(t *testing.T) {
	t.Run("コンテキストにロガーがある場合はそれを返す", func(t *testing.T) {
		l := zap.NewNop()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("未設定の場合はグローバルロガー", func(t *testing.T) {
		assert.Same(t, Get(), FromContext(context.Background()))
	})
}

func TestWith(t *testing.T) {
	l := With(zap.String("key", "value"))
	require.NotNil(t, l)
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = Sync()
	})
}
