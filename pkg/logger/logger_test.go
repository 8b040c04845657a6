package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), "level %q", in)
	}
}

func TestNewTextLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "href", "/admin")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "href=/admin")
}

func TestContextCarrier(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, "info")

	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Info("from context")

	assert.Contains(t, buf.String(), "from context")
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
