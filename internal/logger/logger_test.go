package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/akkm9120/sctp02-crud-mongo/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

var jsonInfo = logger.Options{Format: logger.FormatJSON, Level: slog.LevelInfo}

func TestTraceContextHandler(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, jsonInfo)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	log.InfoContext(ctx, "student created", "id", "abc")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "student created", record["msg"])
	assert.Equal(t, "abc", record["id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", record["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", record["span_id"])
}

func TestNoSpanNoTraceFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, jsonInfo)

	log.Info("plain")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "trace_id")
}

func TestTextOutput(t *testing.T) {
	t.Run("ColorsWarningsAndErrors", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Options{Format: logger.FormatText, Level: slog.LevelDebug, Color: true})

		log.Warn("slow query")
		log.Error("store down", "driver", "mongo")
		log.Info("listening")

		lines := strings.Split(buf.String(), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "\x1b[33m"), lines[0])
		assert.Contains(t, lines[0], `msg="slow query"`)
		assert.True(t, strings.HasPrefix(lines[1], "\x1b[0m\x1b[31m"), lines[1])
		assert.Contains(t, lines[1], "driver=mongo")
		assert.Equal(t, "\x1b[0m", lines[2][:4])
		assert.Contains(t, lines[2], "msg=listening")
		assert.NotContains(t, lines[2], "\x1b[3")
		assert.Empty(t, lines[3])
	})

	t.Run("NoColorWhenDisabled", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Options{Format: logger.FormatText, Level: slog.LevelDebug})

		log.Error("store down")
		assert.NotContains(t, buf.String(), "\x1b[")
	})

	t.Run("LevelFilters", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Options{Format: logger.FormatText, Level: slog.LevelWarn})

		log.Info("hidden")
		log.With("component", "health").Warn("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "component=health")
	})
}
