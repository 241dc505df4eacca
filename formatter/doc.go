// Package formatter defines how log entries are serialized into lines.
//
// A Formatter writes into a caller-owned bytes.Buffer. The engine's
// dispatcher owns a single buffer and reuses it for every entry, so the
// delivery path does not allocate per line.
//
// TextFormatter produces the fixed "timestamp | [LEVEL]: message" layout
// that external tooling parses; JSONFormatter produces one object per line
// with time, level and message keys.
package formatter
