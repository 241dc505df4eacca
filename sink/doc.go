// Package sink provides the output destinations of the engine.
//
// An Output value selects exactly one destination: Stdout, Stderr, File or
// Custom. Open turns it into a Sink. Sinks are written by the engine's
// dispatcher only, one line at a time, so they need no internal
// synchronization for writes.
//
// FileSink consults its Rotator before every write. Rotation is triggered by
// a change of the local date, by the next line pushing the file past
// MaxSizeBytes, or both. File names are fixed for external tooling:
//
//	<Directory>/<BaseName>_<YYYYMMDD>_<index>.log
//
// With Compress set, files that were rotated away from are gzipped in the
// background and Close waits for them.
//
// CallbackSink hands each line to a Receiver. Errors returned by the
// receiver and panics raised inside it come back as *CallbackError and never
// escape the sink.
package sink
