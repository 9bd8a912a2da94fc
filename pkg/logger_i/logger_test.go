package logger_i

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/akolanti/PDFChat/internal/config"
)

func useWriter(t *testing.T, level slog.Level, json bool) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	InitWriter(&buf, level, json)
	return &buf
}

func TestLoggerBuiltBeforeInit(t *testing.T) {
	early := NewLogger("early").With("key", "value")
	buf := useWriter(t, slog.LevelDebug, true)

	early.Debug("debug line", "count", 3)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a json line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "debug line" || line["level"] != "DEBUG" {
		t.Errorf("unexpected line %v", line)
	}
	if line["component"] != "early" || line["key"] != "value" || line["count"] != float64(3) {
		t.Errorf("attributes not emitted as fields: %v", line)
	}
}

func TestLevelIsApplied(t *testing.T) {
	l := NewLogger("quiet")
	buf := useWriter(t, slog.LevelWarn, false)

	l.Info("dropped")
	l.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := useWriter(t, slog.LevelInfo, true)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-1")

	NewLogger("ctx").FromContext(ctx).Info("traced")
	if !strings.Contains(buf.String(), `"traceId":"trace-1"`) {
		t.Errorf("trace id missing in %q", buf.String())
	}
	if TraceId(ctx) != "trace-1" || TraceId(context.Background()) != "" {
		t.Error("TraceId did not read the context value")
	}
}

func TestWithDoesNotShareAttrs(t *testing.T) {
	base := NewLogger("base")
	a := base.With("a", 1)
	b := base.With("b", 2)
	if len(a.attrs) != 4 || len(b.attrs) != 4 || a.attrs[2] != "a" || b.attrs[2] != "b" {
		t.Errorf("With leaked attributes: %v %v", a.attrs, b.attrs)
	}
}
