package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf).Named("driver")

	logger.Debug("hidden")
	logger.Info("Generation completed", map[string]interface{}{
		"generation": 3,
		"error":      errors.New("boom"),
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Generation completed", entry["message"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "driver", entry["component"])
	assert.Equal(t, float64(3), entry["generation"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry["caller"], "logging/logger_test.go")
}

func TestLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DebugLevel, &buf).WithFormat(TextFormat).WithField("run", "r1")

	logger.Warn("Oracle slow", map[string]interface{}{"latency_ms": 12})

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "Oracle slow")
	assert.Contains(t, out, "latency_ms=12")
	assert.Contains(t, out, "run=r1")
}

func TestZapLoggerForwardsFields(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf)).Named("oracle")

	zl.Info("batch sent",
		zap.String("endpoint", "deflection"),
		zap.Int("instances", 4),
		zap.Float64("udl_max", 1250.5),
		zap.Duration("latency", 15*time.Millisecond),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "batch sent", entry["message"])
	assert.Equal(t, "deflection", entry["endpoint"])
	assert.Equal(t, float64(4), entry["instances"])
	assert.Equal(t, 1250.5, entry["udl_max"])
	assert.Equal(t, "oracle", entry["logger"])
}

func TestNewLoggerDefaults(t *testing.T) {
	logger, err := NewLogger(nil)
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, logger.level)
	assert.Equal(t, JSONFormat, logger.format)

	assert.Equal(t, WarnLevel, parseLevel("warn"))
	assert.Equal(t, TextFormat, parseFormat("console"))
}
