package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twscraper/pkg/config"
)

func TestNew(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.NotNil(t, log.GetZerolog())
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "shouting"})
	assert.Error(t, err)
}

func TestNewWithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "twscraper.log")

	log, err := New(&config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	log.Info("hello")

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "log file should be created")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestTestLoggerCaptures(t *testing.T) {
	log := NewTestLogger()

	log.Info("plain message")
	log.WithField("account", "acme").Warn("field message")
	log.WarnWithFields("fields message", map[string]interface{}{"page": 3})

	assert.True(t, log.HasMessage("plain message"))
	assert.Len(t, log.MessagesByLevel("WARN"), 2)

	warns := log.MessagesByLevel("WARN")
	assert.Equal(t, "acme", warns[0].Fields["account"])
	assert.Equal(t, 3, warns[1].Fields["page"])

	log.Clear()
	assert.Empty(t, log.Messages())
}

func TestGetLoggerLazyInit(t *testing.T) {
	// GetLogger must never return nil even before Initialize
	assert.NotNil(t, GetLogger())
}
