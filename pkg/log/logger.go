package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu            sync.RWMutex
	defaultLogger Logger = newZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())
)

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With("component", name)
}

// SetLogger replaces the process-wide default logger. Intended for tests and
// for main to install a configured backend.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// SetLevel sets the global minimum level of the zerolog backend.
func SetLevel(level Level) {
	switch level {
	case LevelDebug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case LevelInfo:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case LevelWarn:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case LevelError:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
}

// ToLevel parses a level string ("debug", "info", "warn", "error").
func ToLevel(level string) (Level, error) {
	switch level {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// zerologLogger adapts zerolog to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

func newZerologLogger(zl zerolog.Logger) *zerologLogger {
	return &zerologLogger{zl: zl}
}

// NewConsoleLogger returns a human-readable logger writing to stderr.
func NewConsoleLogger() Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return newZerologLogger(zl)
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.zl.Debug(), msg, fields)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.emit(z.zl.Info(), msg, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.zl.Warn(), msg, fields)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	e := z.zl.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = e.Err(err)
			fields = fields[1:]
		}
	}
	z.emit(e, msg, fields)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (z *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}
