// Package testutil provides test utilities for structured logging.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// LogRecord is one captured log line with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record for assertions.
type LogRecorder struct {
	store *recordStore
	attrs []slog.Attr
}

type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewRecordingLogger returns a logger whose output can be inspected
// through the returned recorder.
func NewRecordingLogger() (*slog.Logger, *LogRecorder) {
	r := &LogRecorder{store: &recordStore{}}
	return slog.New(r), r
}

// Enabled implements slog.Handler. All levels are recorded.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, len(r.attrs)+rec.NumAttrs())
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Resolve().Any()
		return true
	})

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.records = append(r.store.records, LogRecord{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(r.attrs)+len(attrs))
	merged = append(merged, r.attrs...)
	merged = append(merged, attrs...)
	return &LogRecorder{store: r.store, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are ignored.
func (r *LogRecorder) WithGroup(string) slog.Handler {
	return r
}

// Records returns a copy of the captured records.
func (r *LogRecorder) Records() []LogRecord {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]LogRecord, len(r.store.records))
	copy(out, r.store.records)
	return out
}

// AtLevel returns the captured records logged at level.
func (r *LogRecorder) AtLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, rec := range r.Records() {
		if rec.Level == level {
			out = append(out, rec)
		}
	}
	return out
}

// Find returns the first record with the given level and message.
func (r *LogRecorder) Find(level slog.Level, msg string) (LogRecord, bool) {
	for _, rec := range r.AtLevel(level) {
		if rec.Message == msg {
			return rec, true
		}
	}
	return LogRecord{}, false
}
