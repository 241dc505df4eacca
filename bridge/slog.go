package bridge

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/philipp01105/logq/core"
)

// SlogHandler is an adapter that implements slog.Handler on top of an
// Engine. Attributes are rendered as key=value pairs after the message,
// groups flatten into dotted keys.
type SlogHandler struct {
	engine Engine
	level  core.Level
	attrs  string // pre-rendered attributes from WithAttrs
	group  string
}

// NewSlogHandler creates a slog.Handler feeding e. Records below level or
// below the engine's minimum severity are not enabled.
func NewSlogHandler(e Engine, level core.Level) *SlogHandler {
	return &SlogHandler{
		engine: e,
		level:  level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	l := FromSlogLevel(level)
	return l >= s.level && l >= s.engine.MinSeverity()
}

// Handle submits the record. Records refused by the engine are dropped
// silently, like any other submission.
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Message)
	b.WriteString(s.attrs)
	record.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, s.group, a)
		return true
	})

	s.engine.LogEntry(core.Entry{
		Time:    record.Time,
		Level:   FromSlogLevel(record.Level),
		Message: b.String(),
	})
	return nil
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	var b strings.Builder
	b.WriteString(s.attrs)
	for _, a := range attrs {
		appendAttr(&b, s.group, a)
	}
	clone := *s
	clone.attrs = b.String()
	return &clone
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	clone := *s
	if s.group != "" {
		clone.group = s.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// appendAttr writes " key=value", prefixing the key with group.
func appendAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			appendAttr(b, key, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	if a.Value.Kind() == slog.KindTime {
		b.WriteString(a.Value.Time().Format(time.RFC3339Nano))
		return
	}
	writeString(b, a.Value.String())
}

func writeString(b *strings.Builder, s string) {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		b.WriteString(strconv.Quote(s))
		return
	}
	b.WriteString(s)
}
