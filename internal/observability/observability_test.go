package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/natural-events-service/internal/config"
)

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	require.NotNil(t, logger)
	assert.Same(t, logger, slog.Default())
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewWriterLogger_JSONDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := newWriterLogger(&buf, "info", "json")

	logger.Info("cache refreshed", "events", 3)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "cache refreshed", rec["msg"])
	assert.InDelta(t, 3, rec["events"], 0)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWriterLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newWriterLogger(&buf, "DEBUG", "TEXT")

	logger.Debug("poll tick")

	assert.True(t, strings.Contains(buf.String(), "msg=\"poll tick\""))
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestNewWriterLogger_Levels(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		logger := newWriterLogger(io.Discard, in, "json")
		assert.True(t, logger.Enabled(context.Background(), want), in)
		assert.False(t, logger.Enabled(context.Background(), want-1), in)
	}
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.CacheRequests.WithLabelValues("hit").Inc()
	a.EventsClassified.Add(4)

	assert.InDelta(t, 1, testutil.ToFloat64(a.CacheRequests.WithLabelValues("hit")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(a.EventsClassified), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.EventsClassified), 0)
}
