package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/akolanti/PDFChat/internal/config"
)

// Logger carries attributes only. The handler is looked up on every call, so
// loggers built before Init still follow the configured level and format.
type Logger struct {
	attrs []any
}

// Init installs the process wide handler. JSON output is meant for production.
func Init(level slog.Level, json bool) {
	InitWriter(os.Stdout, level, json)
}

func InitWriter(w io.Writer, level slog.Level, json bool) {
	options := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func NewLogger(section string) *Logger {
	return &Logger{attrs: []any{"component", section}}
}

func (l *Logger) inner() *slog.Logger {
	return slog.Default().With(l.attrs...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner().Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner().Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner().Warn(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner().Debug(msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{attrs: slices.Concat(l.attrs, args)}
}

// FromContext binds the request trace id when one is present.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		return l.With("traceId", trace)
	}
	return l
}

// TraceId returns the trace id stored on ctx, or an empty string.
func TraceId(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}
