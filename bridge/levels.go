package bridge

import (
	"log/slog"

	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/logq/core"
)

// slog has no NOTIFY or FATAL; they sit between INFO and WARN and above
// ERROR respectively.
const (
	slogNotify = slog.LevelInfo + 2
	slogFatal  = slog.LevelError + 4
)

// FromSlogLevel converts a slog.Level to a core.Level.
func FromSlogLevel(level slog.Level) core.Level {
	switch {
	case level >= slogFatal:
		return core.FatalLevel
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarningLevel
	case level >= slogNotify:
		return core.NotifyLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

// SlogLevel converts a core.Level to a slog.Level.
func SlogLevel(level core.Level) slog.Level {
	switch level {
	case core.DebugLevel:
		return slog.LevelDebug
	case core.InfoLevel:
		return slog.LevelInfo
	case core.NotifyLevel:
		return slogNotify
	case core.WarningLevel:
		return slog.LevelWarn
	case core.ErrorLevel:
		return slog.LevelError
	default:
		return slogFatal
	}
}

// FromZapLevel converts a zapcore.Level to a core.Level. DPanic, Panic and
// Fatal all map to FatalLevel.
func FromZapLevel(level zapcore.Level) core.Level {
	switch level {
	case zapcore.DebugLevel:
		return core.DebugLevel
	case zapcore.InfoLevel:
		return core.InfoLevel
	case zapcore.WarnLevel:
		return core.WarningLevel
	case zapcore.ErrorLevel:
		return core.ErrorLevel
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return core.FatalLevel
	default:
		if level < zapcore.DebugLevel {
			return core.DebugLevel
		}
		return core.FatalLevel
	}
}

// ZapLevel converts a core.Level to a zapcore.Level. NotifyLevel has no
// zap counterpart and maps to InfoLevel.
func ZapLevel(level core.Level) zapcore.Level {
	switch level {
	case core.DebugLevel:
		return zapcore.DebugLevel
	case core.InfoLevel, core.NotifyLevel:
		return zapcore.InfoLevel
	case core.WarningLevel:
		return zapcore.WarnLevel
	case core.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}
