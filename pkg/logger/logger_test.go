package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	gormlogger "gorm.io/gorm/logger"
)

func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	Init(Options{Service: "reservation-test", Level: level, Output: buf})
	t.Cleanup(func() { Logger = zerolog.Nop() })
	return buf
}

func TestInit_WritesServiceField(t *testing.T) {
	buf := capture(t, "info")

	Info(context.Background()).Uint("order_id", 7).Msg("allocated")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reservation-test", entry["service"])
	assert.Equal(t, "allocated", entry["message"])
	assert.EqualValues(t, 7, entry["order_id"])
	assert.NotContains(t, entry, "trace_id")
}

func TestWithContext_AddsTraceIDs(t *testing.T) {
	buf := capture(t, "info")

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Info(ctx).Msg("inside span")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestLevelFiltersDebug(t *testing.T) {
	buf := capture(t, "info")

	Debug(context.Background()).Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestGormLogger_Trace(t *testing.T) {
	buf := capture(t, "debug")
	gl := NewGormLogger(10 * time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, nil)
	assert.Zero(t, buf.Len(), "fast query below warn level is not logged")

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	gl.Trace(context.Background(), time.Now(), sql, errors.New("deadlock detected"))
	assert.Contains(t, buf.String(), "deadlock detected")

	buf.Reset()
	gl.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("x"))
	assert.Zero(t, buf.Len())
}
