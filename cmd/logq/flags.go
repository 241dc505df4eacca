package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/philipp01105/logq/config"
	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/queue"
	"github.com/philipp01105/logq/sink"
)

// engineFlags are the engine settings shared by pipe and bench. Flags that
// were set explicitly override the configuration file.
type engineFlags struct {
	configPath string

	level       string
	format      string
	capacity    int
	policy      string
	waitTimeout time.Duration

	output     string
	dir        string
	baseName   string
	rotateDate bool
	rotateSize bool
	maxSize    int64
	compress   bool
}

func (f *engineFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVarP(&f.level, "level", "l", "info", "Minimum severity (debug, info, notify, warning, error, fatal)")
	fs.StringVar(&f.format, "format", "text", "Line format (text, json)")
	fs.IntVar(&f.capacity, "capacity", queue.DefaultCapacity, "Queue capacity")
	fs.StringVar(&f.policy, "policy", "drop", "Overflow policy (drop, overwrite, wait, wait_timeout)")
	fs.DurationVar(&f.waitTimeout, "wait-timeout", queue.DefaultWaitTimeout, "Bound of the wait_timeout policy")
	fs.StringVarP(&f.output, "output", "o", "stdout", "Output (stdout, stderr, file)")
	fs.StringVar(&f.dir, "dir", ".", "Directory of file output")
	fs.StringVar(&f.baseName, "base-name", "logq", "File name prefix of file output")
	fs.BoolVar(&f.rotateDate, "rotate-date", false, "Start a new file when the date changes")
	fs.BoolVar(&f.rotateSize, "rotate-size", false, "Start a new file before --max-size is exceeded")
	fs.Int64Var(&f.maxSize, "max-size", sink.DefaultMaxSizeBytes, "Size threshold for --rotate-size in bytes")
	fs.BoolVar(&f.compress, "compress", false, "Gzip rotated files")
}

// resolve loads the configuration file, if any, and applies the flags that
// were set on cmd.
func (f *engineFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	return f.overlay(cmd, cfg)
}

// overlay applies the flags that were set on cmd to cfg. Reloaded
// configuration files go through it too, so explicit flags keep winning.
func (f *engineFlags) overlay(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	changed := func(name string) bool {
		// without a file every flag applies, including its default
		return f.configPath == "" || cmd.Flags().Changed(name)
	}

	if changed("level") {
		level, err := core.ParseLevel(f.level)
		if err != nil {
			return config.Config{}, err
		}
		cfg.MinSeverity = level
	}
	if changed("format") {
		cfg.Format = f.format
	}
	if changed("capacity") {
		cfg.Queue.Capacity = f.capacity
	}
	if changed("policy") {
		policy, err := queue.ParsePolicy(f.policy)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Queue.Policy = policy
	}
	if changed("wait-timeout") {
		cfg.Queue.WaitTimeout = f.waitTimeout
	}
	if changed("output") {
		cfg.Output.Kind = f.output
	}
	if cfg.Output.Kind == sink.KindFile.String() {
		file := &cfg.Output.File
		if changed("dir") || file.Directory == "" {
			file.Directory = f.dir
		}
		if changed("base-name") || file.BaseName == "" {
			file.BaseName = f.baseName
		}
		if changed("rotate-date") {
			file.RotateByDate = f.rotateDate
		}
		if changed("rotate-size") {
			file.RotateBySize = f.rotateSize
		}
		if changed("max-size") {
			file.MaxSizeBytes = f.maxSize
		}
		if changed("compress") {
			file.Compress = f.compress
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
