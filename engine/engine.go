package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/formatter"
	"github.com/philipp01105/logq/queue"
	"github.com/philipp01105/logq/sink"
)

// State is the lifecycle state of an Engine
type State int32

const (
	// StateCreated accepts configuration; entries are rejected
	StateCreated State = iota
	// StateRunning has exactly one dispatcher draining the queue
	StateRunning
	// StateStopped is terminal
	StateStopped
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Engine accepts log entries from any number of goroutines, holds them in
// a bounded queue and delivers them in submission order to one output
// through a single dispatcher goroutine.
//
// An Engine is created with a Builder, optionally reconfigured, started
// with Run and torn down with Stop. It is not usable again after Stop.
type Engine struct {
	stats Stats

	id           string
	logger       *zap.Logger
	formatter    formatter.Formatter
	env          sink.Env
	clock        func() time.Time
	flushTimeout time.Duration
	drainTimeout time.Duration

	// mu serializes configuration and lifecycle transitions
	mu       sync.Mutex
	state    atomic.Int32
	queue    atomic.Pointer[queue.Queue]
	minLevel atomic.Int32
	done     chan struct{} // closed when the dispatcher exits

	// sinkMu is held by the dispatcher for every write and by a sink swap
	sinkMu sync.Mutex
	sink   sink.Sink
	kind   sink.Kind

	buf      bytes.Buffer // dispatcher-owned
	failures rate.Sometimes
}

func newEngine(b *Builder, f formatter.Formatter) (*Engine, error) {
	if !b.minLevel.Valid() {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidLevel, b.minLevel)
	}
	q, err := queue.New(b.queue)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	e := &Engine{
		id:           id,
		logger:       b.logger.With(zap.String("engine", id)),
		formatter:    f,
		clock:        b.clock,
		flushTimeout: b.flushTimeout,
		drainTimeout: b.drainTimeout,
		failures:     rate.Sometimes{First: 10, Interval: time.Second},
	}
	e.env = sink.Env{
		Stdout:   b.stdout,
		Stderr:   b.stderr,
		Clock:    b.clock,
		Logger:   e.logger,
		OnRotate: e.onRotate,
	}
	e.queue.Store(q)
	e.minLevel.Store(int32(b.minLevel))
	e.state.Store(int32(StateCreated))

	s, err := sink.Open(b.output, e.env)
	if err != nil {
		return nil, err
	}
	e.sink = s
	e.kind = b.output.Kind()
	e.buf.Grow(256)
	return e, nil
}

// ID returns the unique id of this engine instance.
func (e *Engine) ID() string {
	return e.id
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// MinSeverity returns the current minimum level.
func (e *Engine) MinSeverity() core.Level {
	return core.Level(e.minLevel.Load())
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Snapshot {
	snap := e.stats.snapshot()
	q := e.queue.Load()
	snap.QueueLen = q.Len()
	snap.QueueCap = q.Cap()
	return snap
}

// ConfigureOutput replaces the active output. The new sink is opened
// before the old one is closed; the swap happens between two dispatcher
// writes, so no line is split across outputs. On error the previous output
// stays active.
func (e *Engine) ConfigureOutput(out sink.Output) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() == StateStopped {
		return ErrStopped
	}

	next, err := sink.Open(out, e.env)
	if err != nil {
		return fmt.Errorf("configure output: %w", err)
	}

	e.sinkMu.Lock()
	prev, prevKind := e.sink, e.kind
	e.sink, e.kind = next, out.Kind()
	e.sinkMu.Unlock()

	if err := prev.Close(); err != nil {
		e.logger.Warn("closing previous output failed", zap.Stringer("output", prevKind), zap.Error(err))
	}
	e.logger.Info("output configured",
		zap.Stringer("from", prevKind),
		zap.Stringer("to", out.Kind()))
	return nil
}

// ConfigureQueue replaces the queue. It is only allowed before Run; a zero
// waitTimeout selects the default of one second.
func (e *Engine) ConfigureQueue(capacity int, policy queue.Policy, waitTimeout time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.State() {
	case StateRunning:
		return ErrRunning
	case StateStopped:
		return ErrStopped
	}

	q, err := queue.New(queue.Config{Capacity: capacity, Policy: policy, WaitTimeout: waitTimeout})
	if err != nil {
		return fmt.Errorf("configure queue: %w", err)
	}
	e.queue.Store(q)
	e.logger.Debug("queue configured",
		zap.Int("capacity", capacity),
		zap.Stringer("policy", policy),
		zap.Duration("wait_timeout", waitTimeout))
	return nil
}

// ConfigureMinSeverity sets the minimum level. It takes effect for the
// next submission and may be called while running.
func (e *Engine) ConfigureMinSeverity(level core.Level) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %d", core.ErrInvalidLevel, level)
	}
	if e.State() == StateStopped {
		return ErrStopped
	}
	e.minLevel.Store(int32(level))
	return nil
}

// Run starts the dispatcher. It returns false if the engine was already
// started or has been stopped.
func (e *Engine) Run() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() != StateCreated {
		return false
	}
	q := e.queue.Load()
	e.done = make(chan struct{})
	e.state.Store(int32(StateRunning))
	go e.dispatch(q)

	e.logger.Info("engine started",
		zap.Int("capacity", q.Cap()),
		zap.Stringer("policy", q.Policy()),
		zap.Stringer("output", e.kind))
	return true
}

// Log submits a message. It returns true if the entry was admitted to the
// queue. Entries below the minimum level, entries submitted while the
// engine is not running and entries refused by the overflow policy return
// false. Log blocks only under the Wait and WaitTimeout policies.
func (e *Engine) Log(level core.Level, msg string) bool {
	// Level check before any allocation
	if level < core.Level(e.minLevel.Load()) {
		e.stats.add(&e.stats.filtered, 1)
		return false
	}
	if !level.Valid() || e.State() != StateRunning {
		e.stats.add(&e.stats.rejected, 1)
		return false
	}
	return e.submit(core.NewEntry(e.clock, level, msg))
}

// LogEntry submits a prepared entry, for adapters that carry their own
// capture time. A zero Time is stamped by the engine clock; when the engine
// runs without timestamps the given time is cleared.
func (e *Engine) LogEntry(entry core.Entry) bool {
	if entry.Level < core.Level(e.minLevel.Load()) {
		e.stats.add(&e.stats.filtered, 1)
		return false
	}
	if !entry.Level.Valid() || e.State() != StateRunning {
		e.stats.add(&e.stats.rejected, 1)
		return false
	}
	switch {
	case e.clock == nil:
		entry.Time = time.Time{}
	case !entry.HasTime():
		entry.Time = e.clock()
	}
	return e.submit(entry)
}

// Logf formats according to a format specifier and submits the result.
// Formatting is skipped for filtered levels.
func (e *Engine) Logf(level core.Level, format string, args ...any) bool {
	if level < core.Level(e.minLevel.Load()) {
		e.stats.add(&e.stats.filtered, 1)
		return false
	}
	return e.Log(level, fmt.Sprintf(format, args...))
}

func (e *Engine) submit(entry core.Entry) bool {
	switch e.queue.Load().Push(entry) {
	case queue.Queued:
		e.stats.add(&e.stats.accepted, 1)
		return true
	case queue.Overwrote:
		e.stats.add(&e.stats.accepted, 1)
		e.stats.add(&e.stats.overwritten, 1)
		return true
	case queue.TimedOut:
		e.stats.add(&e.stats.timedOut, 1)
		e.stats.IncrementDropped(entry.Level)
		return false
	case queue.Dropped:
		e.stats.IncrementDropped(entry.Level)
		return false
	default:
		e.stats.add(&e.stats.rejected, 1)
		return false
	}
}

// Flush waits until every entry admitted before the call has been
// delivered, bounded by the flush timeout. It returns false on timeout.
func (e *Engine) Flush() bool {
	ctx, cancel := context.WithTimeout(context.Background(), e.flushTimeout)
	defer cancel()
	return e.FlushContext(ctx) == nil
}

// FlushContext is Flush bounded by ctx instead of the flush timeout.
// Entries submitted after the call began may or may not be included.
func (e *Engine) FlushContext(ctx context.Context) error {
	q := e.queue.Load()
	if err := q.WaitDrained(ctx, q.LastSeq()); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %d entries pending", ErrFlushTimeout, q.Len())
		}
		return err
	}
	return nil
}

// Stop shuts the engine down. Producers blocked in Log are woken and fail,
// the dispatcher drains what is queued within the drain timeout, and the
// active output is closed. Entries still queued when the drain timeout
// expires are abandoned and reported through ErrDrainTimeout. Stop is
// idempotent.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.State()
	if prev == StateStopped {
		return nil
	}
	e.state.Store(int32(StateStopped))

	q := e.queue.Load()
	q.Close()

	var err error
	if prev == StateRunning {
		err = e.join(q)
	}

	e.sinkMu.Lock()
	err = multierr.Append(err, e.sink.Close())
	e.sinkMu.Unlock()

	snap := e.stats.snapshot()
	e.logger.Info("engine stopped",
		zap.Uint64("delivered", snap.Delivered),
		zap.Uint64("dropped", snap.DroppedTotal),
		zap.Uint64("abandoned", snap.Abandoned),
		zap.Error(err))
	return err
}

// join waits for the dispatcher to drain q and exit.
func (e *Engine) join(q *queue.Queue) error {
	timer := time.NewTimer(e.drainTimeout)
	defer timer.Stop()

	select {
	case <-e.done:
		return nil
	case <-timer.C:
	}

	n := q.Discard()
	e.stats.add(&e.stats.abandoned, uint64(n))
	e.logger.Warn("drain timed out, abandoning queued entries",
		zap.Duration("timeout", e.drainTimeout),
		zap.Int("abandoned", n))

	// the dispatcher finishes the write it is in and then sees an empty,
	// closed queue
	<-e.done
	return fmt.Errorf("%w: %d entries abandoned", ErrDrainTimeout, n)
}

// dispatch is the dispatcher loop. It exits once q is closed and empty.
func (e *Engine) dispatch(q *queue.Queue) {
	defer close(e.done)

	for {
		it, ok := q.Pop()
		if !ok {
			return
		}
		e.deliver(it.Entry)
		q.Done(it.Seq)
	}
}

func (e *Engine) deliver(entry core.Entry) {
	e.buf.Reset()
	e.formatter.FormatEntry(entry, &e.buf)

	e.sinkMu.Lock()
	err := write(e.sink, e.buf.Bytes())
	kind := e.kind
	e.sinkMu.Unlock()

	if err == nil {
		e.stats.add(&e.stats.delivered, 1)
		return
	}

	var cbErr *sink.CallbackError
	if errors.As(err, &cbErr) {
		e.stats.add(&e.stats.callbackFailures, 1)
	} else {
		e.stats.add(&e.stats.writeFailures, 1)
	}
	e.failures.Do(func() {
		e.logger.Warn("delivering entry failed",
			zap.Stringer("output", kind),
			zap.Stringer("level", entry.Level),
			zap.Error(err))
	})
}

// write calls s.Write and turns a panic into an error so a broken sink
// cannot take the dispatcher down.
func write(s sink.Sink, line []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return s.Write(line)
}

func (e *Engine) onRotate(from, to string) {
	e.stats.add(&e.stats.rotations, 1)
	e.logger.Info("log file rotated", zap.String("from", from), zap.String("to", to))
}
