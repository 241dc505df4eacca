package engine

import "errors"

var (
	// ErrRunning is returned by configuration that is only allowed before Run.
	ErrRunning = errors.New("engine is running")
	// ErrStopped is returned by configuration after Stop.
	ErrStopped = errors.New("engine is stopped")
	// ErrFlushTimeout is returned by FlushContext when the deadline passed
	// with entries still pending.
	ErrFlushTimeout = errors.New("flush timed out")
	// ErrDrainTimeout is returned by Stop when queued entries had to be
	// abandoned.
	ErrDrainTimeout = errors.New("drain timed out")
)
