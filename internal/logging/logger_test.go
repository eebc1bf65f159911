package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, slog.LevelInfo, false)
	logger = logger.With("telling", "0f8fad5b-d9cb-469f-a165-70867728950e")

	logger.Debug("hidden")
	logger.Error("lifecycle fault", "error", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "err=boom")
	assert.Contains(t, out, "telling=0f8fad5b ")
}

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, slog.LevelDebug, true).Debug("tick", "error", "late")
	assert.Contains(t, buf.String(), `"err":"late"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewNop(t *testing.T) {
	assert.False(t, NewNop().Enabled(nil, slog.LevelError))
}
