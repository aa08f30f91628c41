package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"splicer/internal/config"
)

// LogFileName is the JSON log written inside the configured log directory.
const LogFileName = "splicer.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives console or JSON output. Defaults to stderr so command
	// output on stdout stays machine-readable.
	Writer io.Writer
	// FilePath, when set, receives a JSON copy of every record.
	FilePath    string
	SessionID   string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var primary slog.Handler
	switch format {
	case "json":
		primary = newJSONHandler(writer, levelVar, addSource)
	case "console":
		primary = newConsoleHandler(writer, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	var file slog.Handler
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		f, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		file = newJSONHandler(f, levelVar, true)
	}

	return slog.New(newSessionIDHandler(newTeeHandler(primary, file), opts.SessionID)), nil
}

// NewFromConfig creates the process logger from the [logging] and [paths]
// config sections, writing console or JSON records to w. A non-empty level
// overrides the configured one. Every process gets a fresh session identifier.
func NewFromConfig(cfg *config.Config, w io.Writer, level string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: level, Format: "console", Writer: w})
	}
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	opts := Options{
		Level:     level,
		Format:    cfg.Logging.Format,
		Writer:    w,
		SessionID: uuid.NewString(),
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		opts.FilePath = filepath.Join(dir, LogFileName)
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
