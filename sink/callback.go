package sink

import (
	"bytes"
	"fmt"
)

// Receiver consumes formatted lines for a Custom output. Receive is called
// synchronously by the dispatcher, one line at a time, without the trailing
// newline. It must return quickly and must not log through the same engine:
// a receiver that submits entries synchronously can deadlock a full queue
// under the Wait policy.
type Receiver interface {
	Receive(msg string, userData any) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(msg string, userData any) error

// Receive calls f(msg, userData).
func (f ReceiverFunc) Receive(msg string, userData any) error {
	return f(msg, userData)
}

// Custom selects a caller-supplied Receiver. UserData is passed back
// unchanged on every call.
type Custom struct {
	Receiver Receiver
	UserData any
}

// Kind implements Output.
func (Custom) Kind() Kind { return KindCustom }

func (c Custom) validate() error {
	if c.Receiver == nil {
		return fmt.Errorf("%w: custom output needs a receiver", ErrInvalidOutput)
	}
	return nil
}

// CallbackError wraps a failure raised inside a Receiver, either a returned
// error or a recovered panic.
type CallbackError struct {
	Err   error
	Panic any
}

func (e *CallbackError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("callback panicked: %v", e.Panic)
	}
	return fmt.Sprintf("callback failed: %v", e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// CallbackSink hands lines to a Receiver and isolates its failures.
type CallbackSink struct {
	recv Receiver
	data any
}

// NewCallbackSink creates a sink calling recv for every line.
func NewCallbackSink(recv Receiver, userData any) *CallbackSink {
	return &CallbackSink{recv: recv, data: userData}
}

// Write calls the receiver. Panics are recovered and returned as a
// *CallbackError.
func (s *CallbackSink) Write(line []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackError{Panic: r}
		}
	}()

	msg := string(bytes.TrimSuffix(line, []byte{'\n'}))
	if rerr := s.recv.Receive(msg, s.data); rerr != nil {
		return &CallbackError{Err: rerr}
	}
	return nil
}

// Close is a no-op; the receiver belongs to the caller.
func (s *CallbackSink) Close() error {
	return nil
}
