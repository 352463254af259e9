package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestStructuredLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(LogLevelDebug, &buf)

	logger.Info("analysis complete",
		String("operation", "user_list"),
		Int("query_count", 12),
		Float64("score", 73.3),
		Bool("n_plus_one", true),
	)

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, LogLevelInfo, entry.Level)
	assert.Equal(t, "analysis complete", entry.Message)
	assert.NotEmpty(t, entry.Timestamp)
	assert.Equal(t, "user_list", entry.Fields["operation"])
	assert.Equal(t, float64(12), entry.Fields["query_count"])
	assert.Equal(t, 73.3, entry.Fields["score"])
	assert.Equal(t, true, entry.Fields["n_plus_one"])
}

func TestStructuredLogger_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(LogLevelDebug, &buf)

	logger.Error("persist failed", fmt.Errorf("connection refused"))

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, LogLevelError, entry.Level)
	assert.Equal(t, "connection refused", entry.Error)
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(LogLevelWarn, &buf)

	logger.Debug("suppressed")
	logger.Info("suppressed")
	assert.Zero(t, buf.Len())

	logger.Warn("emitted")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestStructuredLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(LogLevelInfo, &buf)

	child := logger.With(String("component", "analyzer"))
	child.Info("detected", Int("detections", 2))

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, "analyzer", entry.Fields["component"])
	assert.Equal(t, float64(2), entry.Fields["detections"])

	// The parent logger is unchanged.
	buf.Reset()
	logger.Info("plain")
	entry = decodeLogLine(t, &buf)
	assert.NotContains(t, entry.Fields, "component")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	// Must be safe to call with anything, including a nil error.
	logger.Debug("x")
	logger.Info("x", String("k", "v"))
	logger.Warn("x")
	logger.Error("x", nil)
	assert.Same(t, Logger(logger), logger.With(String("k", "v")))
}
