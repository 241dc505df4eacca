package bridge

import "github.com/philipp01105/logq/core"

// Engine is the part of *engine.Engine the adapters need.
type Engine interface {
	LogEntry(entry core.Entry) bool
	MinSeverity() core.Level
	Flush() bool
}
