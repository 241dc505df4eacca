package queue

import (
	"context"
	"sync"
	"time"

	"github.com/philipp01105/logq/core"
)

// Item is a queued entry tagged with its admission sequence number.
type Item struct {
	Entry core.Entry
	Seq   uint64
}

// Queue is a bounded FIFO of log entries shared by many producers and a
// single consumer. All state is guarded by mu. Goroutines that need to wait
// (a producer under Wait/WaitTimeout, the consumer on an empty queue, a
// flusher) park on wake, which is closed and replaced whenever the state
// changes while someone is waiting.
type Queue struct {
	mu          sync.Mutex
	buf         []Item
	head        int
	count       int
	policy      Policy
	waitTimeout time.Duration
	nextSeq     uint64 // sequence of the next admitted entry
	inflight    uint64 // popped but not yet Done, 0 when idle
	closed      bool
	waiters     int
	wake        chan struct{}
}

// New creates a queue from cfg.
func New(cfg Config) (*Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.WaitTimeout == 0 {
		cfg.WaitTimeout = DefaultWaitTimeout
	}
	return &Queue{
		buf:         make([]Item, cfg.Capacity),
		policy:      cfg.Policy,
		waitTimeout: cfg.WaitTimeout,
		nextSeq:     1,
		wake:        make(chan struct{}),
	}, nil
}

// Push admits e according to the overflow policy.
func (q *Queue) Push(e core.Entry) Outcome {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Closed
	}
	if q.count < len(q.buf) {
		q.enqueueLocked(e)
		return Queued
	}

	switch q.policy {
	case Overwrite:
		q.evictLocked()
		q.enqueueLocked(e)
		return Overwrote

	case Wait, WaitTimeout:
		var deadline <-chan time.Time
		if q.policy == WaitTimeout {
			timer := time.NewTimer(q.waitTimeout)
			defer timer.Stop()
			deadline = timer.C
		}
		for {
			if q.closed {
				return Closed
			}
			if q.count < len(q.buf) {
				q.enqueueLocked(e)
				return Queued
			}
			if !q.waitLocked(nil, deadline) {
				return TimedOut
			}
		}

	case Drop:
		fallthrough
	default:
		return Dropped
	}
}

// Pop removes and returns the oldest entry, blocking while the queue is
// empty. After Close it keeps returning queued entries and reports false
// once the queue is empty. The returned item stays in flight until Done.
func (q *Queue) Pop() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 {
		if q.closed {
			return Item{}, false
		}
		q.waitLocked(nil, nil)
	}
	return q.popLocked(), true
}

// Done marks the in-flight item with sequence seq as delivered.
func (q *Queue) Done(seq uint64) {
	q.mu.Lock()
	if q.inflight == seq {
		q.inflight = 0
	}
	q.broadcastLocked()
	q.mu.Unlock()
}

// LastSeq returns the sequence number of the most recently admitted entry,
// or 0 if nothing was admitted yet.
func (q *Queue) LastSeq() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextSeq - 1
}

// WaitDrained blocks until every entry admitted with a sequence number up to
// seq has been delivered or evicted, or ctx is done.
func (q *Queue) WaitDrained(ctx context.Context, seq uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.drainedLocked(seq) {
		if !q.waitLocked(ctx.Done(), nil) {
			return ctx.Err()
		}
	}
	return nil
}

// Close rejects further pushes and wakes every waiting goroutine. Producers
// blocked under Wait or WaitTimeout observe Closed. Queued entries remain
// available to Pop.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.broadcastLocked()
}

// Discard removes every queued entry and returns how many were removed.
func (q *Queue) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.count
	clear(q.buf)
	q.head = 0
	q.count = 0
	q.broadcastLocked()
	return n
}

// Len returns the number of queued entries, excluding one in flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Policy returns the overflow policy.
func (q *Queue) Policy() Policy {
	return q.policy
}

// Entries returns a copy of the queued entries, oldest first.
func (q *Queue) Entries() []core.Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]core.Entry, 0, q.count)
	for i := 0; i < q.count; i++ {
		out = append(out, q.buf[(q.head+i)%len(q.buf)].Entry)
	}
	return out
}

func (q *Queue) enqueueLocked(e core.Entry) {
	idx := (q.head + q.count) % len(q.buf)
	q.buf[idx] = Item{Entry: e, Seq: q.nextSeq}
	q.nextSeq++
	q.count++
	q.broadcastLocked()
}

func (q *Queue) popLocked() Item {
	it := q.buf[q.head]
	q.buf[q.head] = Item{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	q.inflight = it.Seq
	q.broadcastLocked()
	return it
}

func (q *Queue) evictLocked() {
	q.buf[q.head] = Item{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--
}

func (q *Queue) drainedLocked(seq uint64) bool {
	headSeq := q.nextSeq
	if q.count > 0 {
		headSeq = q.buf[q.head].Seq
	}
	return headSeq > seq && (q.inflight == 0 || q.inflight > seq)
}

// waitLocked releases mu until the next state change. It returns false if
// cancel or deadline fired first. mu is held again on return.
func (q *Queue) waitLocked(cancel <-chan struct{}, deadline <-chan time.Time) bool {
	wake := q.wake
	q.waiters++
	q.mu.Unlock()

	woken := true
	select {
	case <-wake:
	case <-cancel:
		woken = false
	case <-deadline:
		woken = false
	}

	q.mu.Lock()
	q.waiters--
	return woken
}

func (q *Queue) broadcastLocked() {
	if q.waiters == 0 {
		return
	}
	close(q.wake)
	q.wake = make(chan struct{})
}
