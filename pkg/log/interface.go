// Package log provides the structured logging facade used across gbsearch.
//
// The interface is deliberately small and slog-shaped: leveled methods taking
// a message plus alternating key/value fields, and With for contextual field
// chaining. The default implementation is backed by zerolog; tests can swap in
// the in-memory TestLogger.
package log

// Logger is the structured logging interface used by all packages.
type Logger interface {
	// Debug logs a debug-level message with optional key/value fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional key/value fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional key/value fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional key/value fields.
	// If the first field is an error it is attached as the event error.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger
}

// Level represents a logging level.
type Level int

// Standard logging levels, values compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
