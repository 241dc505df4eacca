package engine

import "github.com/philipp01105/logq/core"

// Debug logs a message at DebugLevel
func (e *Engine) Debug(msg string) bool {
	return e.Log(core.DebugLevel, msg)
}

// Info logs a message at InfoLevel
func (e *Engine) Info(msg string) bool {
	return e.Log(core.InfoLevel, msg)
}

// Notify logs a message at NotifyLevel
func (e *Engine) Notify(msg string) bool {
	return e.Log(core.NotifyLevel, msg)
}

// Warning logs a message at WarningLevel
func (e *Engine) Warning(msg string) bool {
	return e.Log(core.WarningLevel, msg)
}

// Error logs a message at ErrorLevel
func (e *Engine) Error(msg string) bool {
	return e.Log(core.ErrorLevel, msg)
}

// Fatal logs a message at FatalLevel. It does not exit the process.
func (e *Engine) Fatal(msg string) bool {
	return e.Log(core.FatalLevel, msg)
}

// Debugf logs a formatted message at DebugLevel
func (e *Engine) Debugf(format string, args ...any) bool {
	return e.Logf(core.DebugLevel, format, args...)
}

// Infof logs a formatted message at InfoLevel
func (e *Engine) Infof(format string, args ...any) bool {
	return e.Logf(core.InfoLevel, format, args...)
}

// Notifyf logs a formatted message at NotifyLevel
func (e *Engine) Notifyf(format string, args ...any) bool {
	return e.Logf(core.NotifyLevel, format, args...)
}

// Warningf logs a formatted message at WarningLevel
func (e *Engine) Warningf(format string, args ...any) bool {
	return e.Logf(core.WarningLevel, format, args...)
}

// Errorf logs a formatted message at ErrorLevel
func (e *Engine) Errorf(format string, args ...any) bool {
	return e.Logf(core.ErrorLevel, format, args...)
}

// Fatalf logs a formatted message at FatalLevel. It does not exit the process.
func (e *Engine) Fatalf(format string, args ...any) bool {
	return e.Logf(core.FatalLevel, format, args...)
}
