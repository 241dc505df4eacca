package engine

import (
	"io"
	"testing"

	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/queue"
)

func benchEngine(b *testing.B, cfg queue.Config, opts ...func(*Builder)) *Engine {
	b.Helper()
	builder := NewBuilder().WithConsole(io.Discard, io.Discard).WithQueue(cfg)
	for _, opt := range opts {
		opt(builder)
	}
	e, err := builder.Build()
	if err != nil {
		b.Fatal(err)
	}
	e.Run()
	b.Cleanup(func() { _ = e.Stop() })
	return e
}

// BenchmarkInfoDrop benchmarks Info() under the Drop policy with a discard writer.
func BenchmarkInfoDrop(b *testing.B) {
	e := benchEngine(b, queue.Config{Capacity: 4096, Policy: queue.Drop})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Info("test message")
	}
}

// BenchmarkInfoWait benchmarks Info() when producers wait for the dispatcher.
func BenchmarkInfoWait(b *testing.B) {
	e := benchEngine(b, queue.Config{Capacity: 256, Policy: queue.Wait})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Info("test message")
	}
	e.Flush()
}

// BenchmarkInfoCoarseClock benchmarks Info() with cached timestamps.
func BenchmarkInfoCoarseClock(b *testing.B) {
	e := benchEngine(b, queue.Config{Capacity: 4096, Policy: queue.Drop}, func(builder *Builder) {
		builder.WithCoarseClock()
	})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Info("test message")
	}
}

// BenchmarkFilteredDebug benchmarks Debug() when level is Info (should be filtered).
// Target: <10 ns/op, 0 allocs/op, 0 B/op
func BenchmarkFilteredDebug(b *testing.B) {
	e := benchEngine(b, queue.DefaultConfig())

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Log(core.DebugLevel, "filtered")
	}
}

// BenchmarkParallelOverwrite benchmarks concurrent producers under Overwrite.
func BenchmarkParallelOverwrite(b *testing.B) {
	e := benchEngine(b, queue.Config{Capacity: 1024, Policy: queue.Overwrite})

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			e.Info("parallel message")
		}
	})
}
