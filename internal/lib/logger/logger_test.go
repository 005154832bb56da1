package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/UnknownOlympus/athena/internal/lib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env     string
		enabled slog.Level
		blocked slog.Level
	}{
		{logger.EnvLocal, slog.LevelDebug, slog.LevelDebug - 1},
		{logger.EnvDev, slog.LevelInfo, slog.LevelDebug},
		{logger.EnvProd, slog.LevelWarn, slog.LevelInfo},
		{"unknown", slog.LevelError, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			log := logger.New(tt.env, &bytes.Buffer{})
			assert.True(t, log.Enabled(context.Background(), tt.enabled))
			assert.False(t, log.Enabled(context.Background(), tt.blocked))
		})
	}
}

func TestProductionDropsTime(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger.New(logger.EnvProd, &buf).Warn("disk low", "free", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "time")
	assert.Equal(t, "disk low", entry["msg"])
}

func TestSetupWritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "athena.log")
	log, closer := logger.Setup(logger.EnvDev, path)
	log.Info("console started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "console started")
}
