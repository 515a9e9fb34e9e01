package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a leveled logger backed by zerolog.
// Extra fields are passed as alternating key/value pairs.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger writing to stdout. format is "console" or "json".
func New(level, format string) *Logger {
	return NewWithWriter(level, format, os.Stdout)
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

func NewWithWriter(level, format string, w io.Writer) *Logger {
	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &Logger{zl: zerolog.New(out).Level(lvl).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// FromContext returns the request-scoped logger stored by the request logging middleware,
// falling back to l.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	if zl := zerolog.Ctx(ctx); zl != nil && zl.GetLevel() != zerolog.Disabled {
		return &Logger{zl: *zl}
	}
	return l
}

// WithContext stores l in ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.zl.WithContext(ctx)
}

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{zl: l.zl.With().Fields(kv).Logger()}
}

func (l *Logger) Info(msg string, kv ...any) {
	l.zl.Info().Fields(kv).Msg(msg)
}

func (l *Logger) Error(msg string, kv ...any) {
	l.zl.Error().Fields(kv).Msg(msg)
}

func (l *Logger) Debug(msg string, kv ...any) {
	l.zl.Debug().Fields(kv).Msg(msg)
}

func (l *Logger) Warn(msg string, kv ...any) {
	l.zl.Warn().Fields(kv).Msg(msg)
}

func (l *Logger) Fatal(msg string, kv ...any) {
	l.zl.Fatal().Fields(kv).Msg(msg)
}
