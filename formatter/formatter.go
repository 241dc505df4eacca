package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/philipp01105/logq/core"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown format")

// Formatter renders an entry into a caller-provided buffer. The rendered
// line always ends with a single '\n'.
type Formatter interface {
	FormatEntry(entry core.Entry, buf *bytes.Buffer)
}

// Config holds common formatter configuration
type Config struct {
	// TimestampFormat specifies the time layout (empty for the formatter's default)
	TimestampFormat string
}

// New returns the formatter registered under name ("text" or "json").
func New(name string, cfg Config) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text", "txt":
		return NewTextFormatter(cfg), nil
	case "json":
		return NewJSONFormatter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Format renders entry with f into a freshly allocated slice.
func Format(f Formatter, entry core.Entry) []byte {
	var buf bytes.Buffer
	f.FormatEntry(entry, &buf)
	return buf.Bytes()
}
