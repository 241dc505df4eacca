package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLevel is returned when a severity is outside the known range.
var ErrInvalidLevel = errors.New("invalid level")

// Level represents the severity of a log entry. Levels are totally ordered:
// DebugLevel < InfoLevel < NotifyLevel < WarningLevel < ErrorLevel < FatalLevel.
type Level int8

const (
	// DebugLevel for detailed debugging information
	DebugLevel Level = iota
	// InfoLevel for general informational messages (default minimum)
	InfoLevel
	// NotifyLevel for normal but significant events
	NotifyLevel
	// WarningLevel for warning messages
	WarningLevel
	// ErrorLevel for error messages
	ErrorLevel
	// FatalLevel for unrecoverable conditions. Logging at this level does not exit.
	FatalLevel
)

var levelNames = [...]string{
	DebugLevel:   "DEBUG",
	InfoLevel:    "INFO",
	NotifyLevel:  "NOTIFY",
	WarningLevel: "WARNING",
	ErrorLevel:   "ERROR",
	FatalLevel:   "FATAL",
}

// String returns the upper-case name of the level
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= DebugLevel && l <= FatalLevel
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and "warn" is accepted as an alias of WARNING.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "NOTIFY", "NOTICE":
		return NotifyLevel, nil
	case "WARN", "WARNING":
		return WarningLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FATAL":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, l)
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so levels can be read
// from configuration files by name.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
