// Package queue implements the bounded entry queue and its overflow
// controller.
//
// A Queue holds at most Capacity entries. When it is full, Push applies
// the configured Policy: Drop rejects the new entry, Overwrite evicts the
// oldest one, Wait blocks until the consumer frees a slot, and WaitTimeout
// blocks for at most WaitTimeout before rejecting like Drop. Close wakes
// every blocked producer with the Closed outcome, so no producer can hang
// on a stopped engine.
//
// Admitted entries receive increasing sequence numbers. Together with Done,
// which the consumer calls after delivering an entry, they let WaitDrained
// wait for "everything admitted so far" without stopping producers.
package queue
