package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/association-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel string
		expected slog.Level
	}{
		{"DebugLevel", "debug", slog.LevelDebug},
		{"InfoLevel", "info", slog.LevelInfo},
		{"WarnLevel", "warn", slog.LevelWarn},
		{"ErrorLevel", "error", slog.LevelError},
		{"DefaultToInfo", "unknown", slog.LevelInfo},
		{"EmptyToInfo", "", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Logging: config.LoggingConfig{Level: tc.logLevel},
			}

			log := New(cfg, &bytes.Buffer{})
			require.NotNil(t, log)

			assert.True(t, log.Enabled(context.Background(), tc.expected))
			if tc.expected != slog.LevelDebug {
				assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
			}
		})
	}
}

func TestNewLogger_TagsServiceAndEnv(t *testing.T) {
	cfg := &config.Config{
		Application: config.ApplicationConfig{Name: "association-ledger", Env: "test"},
		Logging:     config.LoggingConfig{Level: "info"},
	}

	var buf bytes.Buffer
	log := New(cfg, &buf)
	log.Info("receipt issued", "receipt_no", "REC-2025-0001")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2) // init line plus the record above

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &record))
	assert.Equal(t, "association-ledger", record["service"])
	assert.Equal(t, "test", record["env"])
	assert.Equal(t, "receipt issued", record["msg"])
	assert.Equal(t, "REC-2025-0001", record["receipt_no"])
}
