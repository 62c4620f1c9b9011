package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContextFallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Equal(t, Logger(), FromContext(context.Background()))
}

// TestWithNameAttachesScopedLogger checks a named logger is stored and retrieved.
func TestWithNameAttachesScopedLogger(t *testing.T) {
	t.Parallel()

	ctx := WithName(context.Background(), "test-scope")
	require.NotEqual(t, Logger(), FromContext(ctx))
}
