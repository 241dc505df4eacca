package engine

import (
	"sync/atomic"

	"github.com/philipp01105/logq/core"
)

// Stats tracks engine counters. All methods are safe for concurrent use.
type Stats struct {
	accepted         uint64
	filtered         uint64
	rejected         uint64
	overwritten      uint64
	timedOut         uint64
	delivered        uint64
	writeFailures    uint64
	callbackFailures uint64
	rotations        uint64
	abandoned        uint64
	// Separate atomic counters per level
	dropped [core.FatalLevel + 1]uint64
}

// IncrementDropped atomically increments the dropped counter for a level
func (s *Stats) IncrementDropped(level core.Level) {
	if level.Valid() {
		atomic.AddUint64(&s.dropped[level], 1)
	}
}

// GetDropped returns the dropped count for a level
func (s *Stats) GetDropped(level core.Level) uint64 {
	if !level.Valid() {
		return 0
	}
	return atomic.LoadUint64(&s.dropped[level])
}

// GetTotalDropped returns the total dropped across all levels
func (s *Stats) GetTotalDropped() uint64 {
	var total uint64
	for i := range s.dropped {
		total += atomic.LoadUint64(&s.dropped[i])
	}
	return total
}

func (s *Stats) add(counter *uint64, n uint64) {
	atomic.AddUint64(counter, n)
}

// Snapshot is a point-in-time copy of the engine counters.
type Snapshot struct {
	// Accepted entries were admitted to the queue
	Accepted uint64
	// Filtered entries were below the minimum severity
	Filtered uint64
	// Rejected entries arrived while the engine was not running or the
	// queue was closing
	Rejected uint64
	// Dropped entries found the queue full (Drop) or waited too long
	// (WaitTimeout), by level
	Dropped map[core.Level]uint64
	// DroppedTotal is the sum over Dropped
	DroppedTotal uint64
	// Overwritten counts queued entries evicted by the Overwrite policy
	Overwritten uint64
	// TimedOut counts WaitTimeout expiries, also included in Dropped
	TimedOut uint64
	// Delivered entries were written to a sink successfully
	Delivered uint64
	// WriteFailures counts sink writes that returned an error
	WriteFailures uint64
	// CallbackFailures counts custom receivers that failed or panicked
	CallbackFailures uint64
	// Rotations counts file switches of the file sink
	Rotations uint64
	// Abandoned entries were discarded because Stop ran out of time
	Abandoned uint64
	// QueueLen and QueueCap describe the queue at snapshot time
	QueueLen int
	QueueCap int
}

func (s *Stats) snapshot() Snapshot {
	snap := Snapshot{
		Accepted:         atomic.LoadUint64(&s.accepted),
		Filtered:         atomic.LoadUint64(&s.filtered),
		Rejected:         atomic.LoadUint64(&s.rejected),
		Dropped:          make(map[core.Level]uint64, len(s.dropped)),
		Overwritten:      atomic.LoadUint64(&s.overwritten),
		TimedOut:         atomic.LoadUint64(&s.timedOut),
		Delivered:        atomic.LoadUint64(&s.delivered),
		WriteFailures:    atomic.LoadUint64(&s.writeFailures),
		CallbackFailures: atomic.LoadUint64(&s.callbackFailures),
		Rotations:        atomic.LoadUint64(&s.rotations),
		Abandoned:        atomic.LoadUint64(&s.abandoned),
	}
	for lvl := core.DebugLevel; lvl <= core.FatalLevel; lvl++ {
		snap.Dropped[lvl] = s.GetDropped(lvl)
	}
	snap.DroppedTotal = s.GetTotalDropped()
	return snap
}
