package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sprintdash/internal/config"
)

// logSink owns the log file opened by NewLogger so shutdown can close it.
type logSink struct {
	mu   sync.Mutex
	file *os.File
}

func (s *logSink) swap(f *os.File) *os.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.file
	s.file = f
	return old
}

var (
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
	sink             logSink
)

// InitializeLogger builds the process logger writing to stdout and installs
// it as slog's default. Later calls return the first logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	globalLoggerOnce.Do(func() {
		globalLogger, err = NewLogger(cfg, os.Stdout)
		if err == nil {
			slog.SetDefault(globalLogger)
		}
	})
	return globalLogger, err
}

// GetLogger returns the process logger, or slog's default before
// InitializeLogger has run.
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// NewLogger builds a logger for cfg. Output selects console, file or both;
// Format selects JSON or logfmt-style text. Every record carries the
// trace_id found in its context.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	out, err := openOutput(cfg, console)
	if err != nil {
		return nil, err
	}

	text := strings.EqualFold(cfg.Format, "text")
	opts := &slog.HandlerOptions{
		AddSource: !text,
		Level:     parseLogLevel(cfg.Level),
	}
	var h slog.Handler
	if text {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	return slog.New(traceHandler{h}), nil
}

func openOutput(cfg config.LoggingConfig, console io.Writer) (io.Writer, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return console, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if old := sink.swap(f); old != nil {
		_ = old.Close()
	}

	if mode == "both" {
		return io.MultiWriter(console, f), nil
	}
	return f, nil
}

// traceHandler stamps trace_id from the record's context.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	switch strings.ToLower(level) {
	case "warning":
		return slog.LevelWarn
	case "":
		return slog.LevelInfo
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// CloseLogFile closes the file opened by the last file-backed logger.
func CloseLogFile() error {
	if f := sink.swap(nil); f != nil {
		return f.Close()
	}
	return nil
}

// ResetLoggerForTesting forgets the process logger so tests can
// initialise it again.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}
