package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is an alias for slog.Logger
type Logger = slog.Logger

var (
	defaultLogger *Logger
	level         = new(slog.LevelVar)
)

// Attribute constructors re-exported so callers don't import log/slog.
var (
	String = slog.String
	Int    = slog.Int
	Int64  = slog.Int64
	Bool   = slog.Bool
	Any    = slog.Any
)

func init() {
	level.Set(slog.LevelInfo)
	defaultLogger = New(os.Stderr, "")
}

// New builds a text logger writing to w. Messages are prefixed with "[prefix]" when prefix is set.
func New(w io.Writer, prefix string) *Logger {
	return slog.New(&PrefixHandler{
		prefix:  prefix,
		handler: slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	})
}

// SetLevel changes the level shared by every logger created in this package.
func SetLevel(l slog.Level) {
	level.Set(l)
}

func SetLogger(l *Logger) {
	defaultLogger = l
}

// WithPrefix returns a logger sharing the default handler whose messages carry the given prefix.
func WithPrefix(prefix string) *Logger {
	return slog.New(&PrefixHandler{
		prefix:  prefix,
		handler: defaultLogger.Handler(),
	})
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Errorf(format string, args ...any) {
	defaultLogger.Error(fmt.Sprintf(format, args...))
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Err(err error) slog.Attr {
	return slog.Attr{Key: "error", Value: slog.AnyValue(err)}
}

func FilePath(path string) slog.Attr {
	return slog.String("file_path", path)
}

func AdvisoryID(id string) slog.Attr {
	return slog.String("advisory_id", id)
}

func Element(name string) slog.Attr {
	return slog.String("element", name)
}

// PrefixHandler wraps a slog.Handler and prepends "[prefix] " to every message.
type PrefixHandler struct {
	prefix  string
	handler slog.Handler
}

func (h *PrefixHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.prefix != "" {
		r.Message = fmt.Sprintf("[%s] %s", h.prefix, r.Message)
	}
	return h.handler.Handle(ctx, r)
}

func (h *PrefixHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrefixHandler{
		prefix:  h.prefix,
		handler: h.handler.WithAttrs(attrs),
	}
}

func (h *PrefixHandler) WithGroup(name string) slog.Handler {
	return &PrefixHandler{
		prefix:  h.prefix,
		handler: h.handler.WithGroup(name),
	}
}

func (h *PrefixHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.handler.Enabled(ctx, l)
}
