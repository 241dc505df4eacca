package sink

import "io"

// ConsoleSink writes every line synchronously to a stream.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a console sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Write writes the line to the stream.
func (s *ConsoleSink) Write(line []byte) error {
	_, err := s.w.Write(line)
	return err
}

// Close is a no-op; the process streams stay open.
func (s *ConsoleSink) Close() error {
	return nil
}
