package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/SscSPs/income_converter/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestNew_ProductionLogsJSONWithRunID(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(&buf, "info", true)
	l, runID := logger.WithRun(base, "batch")
	require.NotEmpty(t, runID)

	l.Debug("hidden")
	l.Info("started")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "started", line["msg"])
	assert.Equal(t, runID, line["run_id"])
	assert.Equal(t, "batch", line["mode"])
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, "debug", false)

	ctx := logger.WithLogger(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
}
