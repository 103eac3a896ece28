package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	EMPTY    = ""
	DEBUG    = "debug"
	INFO     = "info"
	WARN     = "warn"
	ERROR    = "error"
	JSON     = "json"
	TEXT     = "text"
	SERVICE  = "service"
	INSTANCE = "instance"
)

type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string
	Format    string
	Output    io.Writer
	AddSource bool
	Service   string
	// Instance tells records of replicas sharing one Mongo database apart.
	Instance string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case TEXT:
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	var attrs []slog.Attr
	if cfg.Service != EMPTY {
		attrs = append(attrs, slog.String(SERVICE, cfg.Service))
	}
	if cfg.Instance != EMPTY {
		attrs = append(attrs, slog.String(INSTANCE, cfg.Instance))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return New(Config{Output: io.Discard, Level: ERROR})
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

func parseLevel(level string) slog.Level {
	switch level {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
