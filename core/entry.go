package core

import "time"

// Entry is a single log event. It is passed by value from the producer to
// the dispatcher, so once submitted it cannot be changed by the caller.
type Entry struct {
	// Time is the capture timestamp. The zero value means no timestamp was
	// captured and formatters omit it.
	Time    time.Time
	Level   Level
	Message string
}

// NewEntry creates an entry stamped with the given clock. A nil clock
// leaves the timestamp empty.
func NewEntry(clock func() time.Time, level Level, msg string) Entry {
	e := Entry{Level: level, Message: msg}
	if clock != nil {
		e.Time = clock()
	}
	return e
}

// HasTime reports whether a capture timestamp is present.
func (e Entry) HasTime() bool {
	return !e.Time.IsZero()
}
