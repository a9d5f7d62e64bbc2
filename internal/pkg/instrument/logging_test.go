package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNewLogger_Fields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{ServiceName: "mailbite", Level: slog.LevelInfo})

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "email dispatched", "to", "a@b.test")

	line := decodeLine(t, &buf)
	require.Equal(t, "INFO", line["severity"])
	require.Equal(t, "email dispatched", line["msg"])
	require.Equal(t, "cid-1", line["_cID"])
	require.Equal(t, "mailbite", line["service"])
	require.Contains(t, line, "ts")
	require.Contains(t, line["file"], "internal/pkg/instrument/logging_test.go:")
}

func TestNewLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{Level: ParseLevel("warn")})

	logger.Info("dropped")
	require.Zero(t, buf.Len())

	logger.Warn("kept")
	line := decodeLine(t, &buf)
	require.Equal(t, "WARN", line["severity"])
	require.NotContains(t, line, "_cID")
	require.NotContains(t, line, "service")
}

func TestNewLogger_Mask(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{MaskFields: []string{" Verification_Code ", "password", ""}})

	logger.With("svc", "email").Info("payload",
		"verification_code", "123456",
		"body", `{"to":"a@b.test","password":"hunter2"}`,
		slog.Group("req", slog.String("Password", "x"), slog.String("to", "a@b.test")),
		"meta", map[string]any{"password": "p", "nested": []any{map[string]any{"verification_code": "9"}}},
	)

	line := decodeLine(t, &buf)
	require.Equal(t, "***", line["verification_code"])
	require.Equal(t, "email", line["svc"])
	require.JSONEq(t, `{"to":"a@b.test","password":"***"}`, line["body"].(string))
	require.Equal(t, map[string]any{"Password": "***", "to": "a@b.test"}, line["req"])
	require.Equal(t, map[string]any{
		"password": "***",
		"nested":   []any{map[string]any{"verification_code": "***"}},
	}, line["meta"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelError, ParseLevel(" ERROR "))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Empty(t, GetCorrelationID(ctx))
	require.Equal(t, ctx, SetCorrelationID(ctx, ""))
	require.Equal(t, "x", GetCorrelationID(SetCorrelationID(ctx, "x")))
}

func TestNew_DisabledReturnsNoop(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	inst, err := New(context.Background(), &Config{ServiceName: "mailbite"})
	require.NoError(t, err)
	require.NotNil(t, inst.Tracer("t"))
	require.NotNil(t, inst.Meter("m"))
	require.NoError(t, inst.Shutdown(context.Background()))

	inst, err = New(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, inst.Shutdown(context.Background()))
}

func TestClampRatio(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.0, clampRatio(-1), 0)
	require.InDelta(t, 0.5, clampRatio(0.5), 0)
	require.InDelta(t, 1.0, clampRatio(3), 0)
}
