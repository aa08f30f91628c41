package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// teeHandler sends each record to the terminal handler and to the JSON log
// file handler, each filtered by its own level. The file copy is written
// first.
type teeHandler struct {
	terminal slog.Handler
	file     slog.Handler
}

// newTeeHandler returns the one non-nil handler unwrapped when only one is
// configured.
func newTeeHandler(terminal, file slog.Handler) slog.Handler {
	switch {
	case terminal == nil && file == nil:
		return NoopHandler{}
	case file == nil:
		return terminal
	case terminal == nil:
		return file
	}
	return &teeHandler{terminal: terminal, file: file}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.file.Enabled(ctx, level) || h.terminal.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var fileErr, terminalErr error
	if h.file.Enabled(ctx, record.Level) {
		if err := h.file.Handle(ctx, record.Clone()); err != nil {
			fileErr = fmt.Errorf("log file: %w", err)
		}
	}
	if h.terminal.Enabled(ctx, record.Level) {
		terminalErr = h.terminal.Handle(ctx, record)
	}
	return errors.Join(fileErr, terminalErr)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{terminal: h.terminal.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{terminal: h.terminal.WithGroup(name), file: h.file.WithGroup(name)}
}
