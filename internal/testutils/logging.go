// Package testutils holds small helpers shared across the package tests.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// NopLogger returns a logger that discards everything.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LogEntry is one captured log record, flattened to a key-value map with
// "level" and "message" always present.
type LogEntry map[string]any

type captureBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
}

// CaptureHandler is a memory-backed slog.Handler for asserting on log
// output. Handlers derived via WithAttrs append to the same buffer. Safe
// for concurrent use.
type CaptureHandler struct {
	attrs []slog.Attr
	buf   *captureBuffer
}

// NewCaptureLogger returns a logger whose records the handler captures.
func NewCaptureLogger() (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{buf: &captureBuffer{}}
	return slog.New(h), h
}

func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		"level":   r.Level.String(),
		"message": r.Message,
	}
	for _, attr := range h.attrs {
		entry[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Any()
		return true
	})

	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.entries = append(h.buf.entries, entry)
	return nil
}

func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CaptureHandler{attrs: merged, buf: h.buf}
}

func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Entries returns a copy of the captured records.
func (h *CaptureHandler) Entries() []LogEntry {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	out := make([]LogEntry, len(h.buf.entries))
	copy(out, h.buf.entries)
	return out
}

// HasMessage reports whether any captured record carries the message.
func (h *CaptureHandler) HasMessage(message string) bool {
	for _, e := range h.Entries() {
		if e["message"] == message {
			return true
		}
	}
	return false
}
