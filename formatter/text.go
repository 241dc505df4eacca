package formatter

import (
	"bytes"

	"github.com/philipp01105/logq/core"
)

// DefaultTextTimestamp is the timestamp layout of text lines: local date
// and time with nanosecond precision.
const DefaultTextTimestamp = "2006-01-02 15:04:05.000000000"

// TextFormatter formats entries as
//
//	2025-08-22 10:31:07.000123456 | [WARNING]: disk almost full
//
// Entries without a capture timestamp start directly at the level.
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = DefaultTextTimestamp
	}
	return &TextFormatter{Config: cfg}
}

// pre-formatted level strings to avoid multiple WriteString calls
var levelBrackets = [...]string{
	core.DebugLevel:   "[DEBUG]: ",
	core.InfoLevel:    "[INFO]: ",
	core.NotifyLevel:  "[NOTIFY]: ",
	core.WarningLevel: "[WARNING]: ",
	core.ErrorLevel:   "[ERROR]: ",
	core.FatalLevel:   "[FATAL]: ",
}

// FormatEntry writes the formatted entry into buf.
func (f *TextFormatter) FormatEntry(entry core.Entry, buf *bytes.Buffer) {
	if entry.HasTime() {
		buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
		buf.WriteString(" | ")
	}

	if entry.Level.Valid() {
		buf.WriteString(levelBrackets[entry.Level])
	} else {
		buf.WriteString("[UNKNOWN]: ")
	}

	buf.WriteString(entry.Message)
	buf.WriteByte('\n')
}
