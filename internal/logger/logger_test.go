package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevels(t *testing.T) {
	for _, tc := range []struct {
		name          string
		log           func(l Logger, msg string)
		expectedLevel zapcore.Level
	}{
		{"Debug", func(l Logger, msg string) { l.Debug(msg) }, zapcore.DebugLevel},
		{"Info", func(l Logger, msg string) { l.Info(msg) }, zapcore.InfoLevel},
		{"Warn", func(l Logger, msg string) { l.Warn(msg) }, zapcore.WarnLevel},
		{"Error", func(l Logger, msg string) { l.Error(msg) }, zapcore.ErrorLevel},
		{"DebugWithContext", func(l Logger, msg string) { l.DebugWithContext(context.Background(), msg) }, zapcore.DebugLevel},
		{"ErrorWithContext", func(l Logger, msg string) { l.ErrorWithContext(context.Background(), msg) }, zapcore.ErrorLevel},
	} {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			dut := &ZapLogger{zap.New(core)}
			tc.log(dut, "ABC")
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			require.Equal(t, "ABC", entry.Message)
			require.Equal(t, tc.expectedLevel, entry.Level)
		})
	}
}

func TestWith(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dut := (&ZapLogger{zap.New(core)}).With(zap.String("task", "prime"))
	dut.Info("done", zap.Int("rounds", 3))
	require.Equal(t, 1, logs.Len())
	require.Equal(t, map[string]interface{}{"task": "prime", "rounds": int64(3)}, logs.All()[0].ContextMap())
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("json", "info")
	require.NoError(t, err)
	_, err = NewLogger("text", "debug")
	require.NoError(t, err)
	l, err := NewLogger("xml", "none")
	require.NoError(t, err)
	require.NotNil(t, l)
	_, err = NewLogger("json", "verbose")
	require.Error(t, err)
	_, err = NewLogger("xml", "info")
	require.Error(t, err)
	require.Panics(t, func() { MustNewLogger("json", "verbose") })
}
