// Package core defines the types shared by every logq package.
//
// Level is the canonical severity enumeration. It is totally ordered from
// DebugLevel to FatalLevel and is the only level type the engine knows;
// adapters for other logging front ends (slog, zap) map onto it exactly
// once at their boundary.
//
// Entry is the unit of log data. It is a small value type (timestamp,
// level, message) copied into the queue on submission, so producers never
// share memory with the dispatcher.
//
// The coarse clock caches time.Now() every 500µs for callers that prefer
// cheaper timestamps over nanosecond precision.
package core
