package engine

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/formatter"
	"github.com/philipp01105/logq/queue"
	"github.com/philipp01105/logq/sink"
)

const (
	// DefaultFlushTimeout bounds Flush.
	DefaultFlushTimeout = 4 * time.Second
	// DefaultDrainTimeout bounds the queue drain performed by Stop.
	DefaultDrainTimeout = 5 * time.Second
)

// Builder provides a fluent API for building Engine instances
type Builder struct {
	logger       *zap.Logger
	formatter    formatter.Formatter
	stdout       io.Writer
	stderr       io.Writer
	clock        func() time.Time
	coarseClock  bool
	flushTimeout time.Duration
	drainTimeout time.Duration
	queue        queue.Config
	output       sink.Output
	minLevel     core.Level
}

// NewBuilder creates a new engine builder
func NewBuilder() *Builder {
	return &Builder{
		logger:       zap.NewNop(),
		clock:        time.Now,
		flushTimeout: DefaultFlushTimeout,
		drainTimeout: DefaultDrainTimeout,
		queue:        queue.DefaultConfig(),
		output:       sink.Stdout{},
		minLevel:     core.InfoLevel, // Default level
	}
}

// WithDiagnostics sets the logger that receives the engine's own
// lifecycle and failure reports. The engine never logs through itself.
func (b *Builder) WithDiagnostics(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.logger = logger
	return b
}

// WithFormatter sets the line formatter (default: text)
func (b *Builder) WithFormatter(f formatter.Formatter) *Builder {
	b.formatter = f
	return b
}

// WithConsole replaces the streams behind the Stdout and Stderr outputs
func (b *Builder) WithConsole(stdout, stderr io.Writer) *Builder {
	b.stdout = stdout
	b.stderr = stderr
	return b
}

// WithClock sets the timestamp source. A nil clock disables timestamps.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	b.coarseClock = false
	return b
}

// WithCoarseClock stamps entries with core.CoarseNow, which trades
// sub-millisecond precision for a cheaper submission path.
func (b *Builder) WithCoarseClock() *Builder {
	b.clock = core.CoarseNow
	b.coarseClock = true
	return b
}

// WithFlushTimeout sets the deadline used by Flush
func (b *Builder) WithFlushTimeout(d time.Duration) *Builder {
	if d > 0 {
		b.flushTimeout = d
	}
	return b
}

// WithDrainTimeout sets how long Stop lets the dispatcher drain the queue
func (b *Builder) WithDrainTimeout(d time.Duration) *Builder {
	if d > 0 {
		b.drainTimeout = d
	}
	return b
}

// WithQueue sets the initial queue configuration
func (b *Builder) WithQueue(cfg queue.Config) *Builder {
	b.queue = cfg
	return b
}

// WithOutput sets the initial output (default: Stdout)
func (b *Builder) WithOutput(out sink.Output) *Builder {
	b.output = out
	return b
}

// WithMinSeverity sets the minimum level that reaches the queue
func (b *Builder) WithMinSeverity(level core.Level) *Builder {
	b.minLevel = level
	return b
}

// Build creates the Engine in the Created state. It fails if the queue,
// output or level configuration is invalid or the output cannot be opened.
func (b *Builder) Build() (*Engine, error) {
	if b.coarseClock {
		core.StartCoarseClock()
	}
	f := b.formatter
	if f == nil {
		f = formatter.NewTextFormatter(formatter.Config{})
	}
	return newEngine(b, f)
}

// New creates an Engine with the default configuration: text lines on
// stdout, a queue of 200 entries under the Drop policy and INFO as the
// minimum level.
func New() *Engine {
	e, err := NewBuilder().Build()
	if err != nil {
		// the defaults are always valid
		panic(err)
	}
	return e
}
