package authtools

import (
	"context"
	"log/slog"
	"strings"
)

// LogLevel is the severity passed to a LogFunc.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFunc receives one line per call. The engine never passes embedded
// newlines.
type LogFunc func(level LogLevel, message string)

// SlogSink adapts logger to a LogFunc. A nil logger uses slog.Default.
func SlogSink(logger *slog.Logger) LogFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(level LogLevel, message string) {
		logger.Log(context.Background(), level.slogLevel(), message, "component", "authtools")
	}
}

type engineLogger struct {
	sink LogFunc
}

func (l engineLogger) log(level LogLevel, message string) {
	if l.sink == nil {
		return
	}
	for _, line := range strings.Split(message, "\n") {
		l.sink(level, line)
	}
}

func (l engineLogger) debug(message string) { l.log(LevelDebug, message) }
func (l engineLogger) warn(message string)  { l.log(LevelWarn, message) }
func (l engineLogger) error(message string) { l.log(LevelError, message) }
