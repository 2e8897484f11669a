// Testing utilities for the logging facade. TestLogger captures log records in
// memory so tests can assert on emitted warnings without touching stderr.

package log

import (
	"fmt"
	"strings"
	"sync"
)

// Record is one captured log entry.
type Record struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// recordBuffer is the capture target shared by a TestLogger and every logger
// derived from it with With. One lock guards the slice for all of them.
type recordBuffer struct {
	mu      sync.Mutex
	records []Record
}

func (b *recordBuffer) append(rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, rec)
}

func (b *recordBuffer) snapshot() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// TestLogger captures log records in memory for later inspection.
type TestLogger struct {
	buf    *recordBuffer
	level  Level
	fields map[string]any
}

// NewTestLogger creates a TestLogger capturing records at or above level.
func NewTestLogger(level Level) *TestLogger {
	return &TestLogger{
		buf:    &recordBuffer{},
		level:  level,
		fields: make(map[string]any),
	}
}

// Records returns a copy of all captured records.
func (t *TestLogger) Records() []Record {
	return t.buf.snapshot()
}

// Contains reports whether any captured message contains substr.
func (t *TestLogger) Contains(substr string) bool {
	for _, r := range t.Records() {
		if strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}

// Debug implements Logger.Debug.
func (t *TestLogger) Debug(msg string, fields ...any) { t.capture(LevelDebug, msg, fields) }

// Info implements Logger.Info.
func (t *TestLogger) Info(msg string, fields ...any) { t.capture(LevelInfo, msg, fields) }

// Warn implements Logger.Warn.
func (t *TestLogger) Warn(msg string, fields ...any) { t.capture(LevelWarn, msg, fields) }

// Error implements Logger.Error.
func (t *TestLogger) Error(msg string, fields ...any) { t.capture(LevelError, msg, fields) }

// With implements Logger.With. The derived logger shares the record buffer and
// its lock; field maps are never mutated after construction.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		merged[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}
	return &TestLogger{buf: t.buf, level: t.level, fields: merged}
}

func (t *TestLogger) capture(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	rec := Record{Level: level, Message: msg, Fields: make(map[string]any)}
	for k, v := range t.fields {
		rec.Fields[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		rec.Fields[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}
	t.buf.append(rec)
}
