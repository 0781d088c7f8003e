package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by --log-format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger wraps slog.Logger so packages can derive component loggers
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  slog.Level
	Format string
	Writer io.Writer
}

// DefaultConfig logs text at info level to stderr, keeping stdout for
// command output.
func DefaultConfig() *Config {
	return &Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Writer: os.Stderr,
	}
}

// ParseFormat normalises a --log-format value.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q (want text or json)", s)
	}
}

// New builds a logger from cfg. Debug level also records the source line.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	format, _ := ParseFormat(cfg.Format)
	if format == FormatJSON {
		return &Logger{Logger: slog.New(slog.NewJSONHandler(w, opts))}
	}
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}
}

// NewFromFlags creates a stderr logger from the --debug and --log-format flags
func NewFromFlags(debug bool, format string) *Logger {
	cfg := DefaultConfig()
	if debug {
		cfg.Level = slog.LevelDebug
	}
	cfg.Format = format
	return New(cfg)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithComponent tags every entry with the emitting component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With(slog.String("component", component))}
}

// WithFields adds structured fields to all log entries
func (l *Logger) WithFields(attrs ...slog.Attr) *Logger {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return &Logger{Logger: l.With(args...)}
}
