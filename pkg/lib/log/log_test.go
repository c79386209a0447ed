package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyLogger_FollowsOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Discard()
	SetLevel(slog.LevelInfo)

	l := Logger("test/component")
	l.Debug("hidden")
	l.Info("visible", "peer", "n1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "component=test/component")
	assert.Contains(t, out, "peer=n1")

	SetLevel(slog.LevelDebug)
	defer SetLevel(slog.LevelInfo)
	assert.True(t, l.Enabled(slog.LevelDebug))
	l.Debug("now shown")
	assert.Contains(t, buf.String(), "now shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", TruncateID("abc", 8))
	assert.Equal(t, "abcdefgh", TruncateID("abcdefghijk", 8))
}
