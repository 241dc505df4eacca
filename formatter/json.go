package formatter

import (
	"bytes"
	"time"

	"github.com/philipp01105/logq/core"
)

// JSONFormatter formats entries as one JSON object per line
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

// FormatEntry builds the JSON object manually into the buffer without allocations
func (f *JSONFormatter) FormatEntry(entry core.Entry, buf *bytes.Buffer) {
	buf.WriteByte('{')

	if entry.HasTime() {
		buf.WriteString(`"time":"`)
		buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
		buf.WriteString(`",`)
	}

	buf.WriteString(`"level":"`)
	buf.WriteString(entry.Level.String())
	buf.WriteString(`","message":"`)
	appendJSONString(buf, entry.Message)
	buf.WriteString("\"}\n")
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		// Flush unescaped prefix
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}
