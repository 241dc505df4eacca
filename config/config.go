package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/engine"
	"github.com/philipp01105/logq/formatter"
	"github.com/philipp01105/logq/queue"
	"github.com/philipp01105/logq/sink"
)

// ErrCustomOutput is returned for output kind "custom", which needs a
// Receiver and cannot be described in a file.
var ErrCustomOutput = errors.New("custom output cannot be configured from a file")

// Config is the file representation of an engine configuration.
//
//	min_severity: warning
//	format: text
//	queue:
//	  capacity: 500
//	  overflow_policy: wait_timeout
//	  wait_timeout: 250ms
//	output:
//	  kind: file
//	  file:
//	    directory: /var/log/app
//	    base_name: app
//	    rotate_by_size: true
//	    max_size_bytes: 10000000
//	flush_timeout: 4s
//	drain_timeout: 5s
type Config struct {
	MinSeverity     core.Level    `yaml:"min_severity"`
	Format          string        `yaml:"format"`
	TimestampFormat string        `yaml:"timestamp_format,omitempty"`
	Queue           queue.Config  `yaml:"queue"`
	Output          Output        `yaml:"output"`
	FlushTimeout    time.Duration `yaml:"flush_timeout"`
	DrainTimeout    time.Duration `yaml:"drain_timeout"`
}

// Output selects the sink. File is only read for kind "file".
type Output struct {
	Kind string    `yaml:"kind"`
	File sink.File `yaml:"file,omitempty"`
}

// DefaultConfig returns the configuration of engine.New.
func DefaultConfig() Config {
	return Config{
		MinSeverity:  core.InfoLevel,
		Format:       "text",
		Queue:        queue.DefaultConfig(),
		Output:       Output{Kind: sink.KindStdout.String()},
		FlushTimeout: engine.DefaultFlushTimeout,
		DrainTimeout: engine.DefaultDrainTimeout,
	}
}

// Sink converts the output section to a sink.Output.
func (o Output) Sink() (sink.Output, error) {
	if o.Kind == "" {
		return sink.Stdout{}, nil
	}
	kind, err := sink.ParseKind(o.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case sink.KindFile:
		return o.File, nil
	case sink.KindStderr:
		return sink.Stderr{}, nil
	case sink.KindCustom:
		return nil, ErrCustomOutput
	default:
		return sink.Stdout{}, nil
	}
}

// Validate reports the first configuration error, if any.
func (c Config) Validate() error {
	if !c.MinSeverity.Valid() {
		return fmt.Errorf("min_severity: %w: %d", core.ErrInvalidLevel, c.MinSeverity)
	}
	if _, err := c.Formatter(); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	out, err := c.Output.Sink()
	if err == nil {
		err = sink.Validate(out)
	}
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if c.FlushTimeout < 0 || c.DrainTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// Formatter creates the configured formatter.
func (c Config) Formatter() (formatter.Formatter, error) {
	return formatter.New(c.Format, formatter.Config{TimestampFormat: c.TimestampFormat})
}

// Parse decodes YAML on top of DefaultConfig and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Builder returns an engine builder preset from c. Further options, such as
// diagnostics, can be chained before Build.
func (c Config) Builder() (*engine.Builder, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	f, _ := c.Formatter()
	out, _ := c.Output.Sink()
	return engine.NewBuilder().
		WithFormatter(f).
		WithMinSeverity(c.MinSeverity).
		WithQueue(c.Queue).
		WithOutput(out).
		WithFlushTimeout(c.FlushTimeout).
		WithDrainTimeout(c.DrainTimeout), nil
}

// Apply moves a running engine from prev to next. Minimum severity and
// output are changed in place; the output is only reopened when its
// section changed. Queue, format and timeout changes need a new engine and
// are reported through logger.
func Apply(e *engine.Engine, prev, next Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if next.MinSeverity != prev.MinSeverity {
		if err := e.ConfigureMinSeverity(next.MinSeverity); err != nil {
			return err
		}
		logger.Info("min severity changed",
			zap.Stringer("from", prev.MinSeverity),
			zap.Stringer("to", next.MinSeverity))
	}
	if next.Output != prev.Output {
		out, err := next.Output.Sink()
		if err != nil {
			return err
		}
		if err := e.ConfigureOutput(out); err != nil {
			return err
		}
	}
	if next.Queue != prev.Queue || next.Format != prev.Format || next.TimestampFormat != prev.TimestampFormat ||
		next.FlushTimeout != prev.FlushTimeout || next.DrainTimeout != prev.DrainTimeout {
		logger.Warn("queue, format and timeout changes take effect after restart")
	}
	return nil
}
