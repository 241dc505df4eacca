// Package engine implements the logq logging engine.
//
// Producers call Log (or one of the level helpers) from any goroutine. An
// entry below the minimum severity is discarded before it touches the
// queue. Accepted entries wait in a bounded queue.Queue whose overflow
// policy decides what happens when it is full, and a single dispatcher
// goroutine formats them and writes them to the active sink in submission
// order.
//
// Basic usage:
//
//	e, err := engine.NewBuilder().
//		WithOutput(sink.File{Directory: "/var/log/app", BaseName: "app", RotateBySize: true}).
//		WithQueue(queue.Config{Capacity: 1024, Policy: queue.Wait}).
//		Build()
//	if err != nil {
//		return err
//	}
//	e.Run()
//	defer e.Stop()
//
//	e.Info("service started")
//	e.Warningf("disk %d%% full", 91)
//
// Lifecycle: an engine starts in StateCreated, where output, queue and
// level can be configured and submissions are rejected. Run starts the
// dispatcher (StateRunning); from then on the queue can no longer be
// replaced. Stop moves to StateStopped, wakes producers blocked under the
// Wait policies, lets the dispatcher drain within the drain timeout and
// closes the output.
//
// Flush blocks until everything submitted before the call has been written,
// or until the flush timeout (4s by default) expires.
//
// The engine reports its own lifecycle and failures to the zap logger set
// with Builder.WithDiagnostics and never through itself. Counters are
// available through Stats.
package engine
