package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/philipp01105/logq/config"
	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/engine"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

type pipeOptions struct {
	engineFlags
	json         bool
	defaultLevel string
	watch        bool
}

func newPipeCmd() *cobra.Command {
	opts := &pipeOptions{}
	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Route lines from stdin through the engine",
		Long: `Read lines from stdin and submit each one as a log entry.

With --json every line is parsed as an object; "level" (or "severity")
selects the level and "message" (or "msg") the text. Lines that are not
valid JSON are submitted verbatim at the default level.

With --watch and --config, changes to the minimum severity and output in
the configuration file are applied without restarting. Flags given on the
command line keep overriding the file across reloads.`,
		Example: `  tail -F app.log | logq pipe --output file --dir /var/log/app --rotate-size
  app --json-logs | logq pipe --json --level warning --policy wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipe(cmd, opts)
		},
	}
	opts.engineFlags.bind(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "Parse input lines as JSON objects")
	cmd.Flags().StringVar(&opts.defaultLevel, "default-level", "info", "Level of lines without one")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload --config on change")
	return cmd
}

func runPipe(cmd *cobra.Command, opts *pipeOptions) (err error) {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}
	defaultLevel, err := core.ParseLevel(opts.defaultLevel)
	if err != nil {
		return err
	}
	logger, err := diagnostics()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	b, err := cfg.Builder()
	if err != nil {
		return err
	}
	e, err := b.WithDiagnostics(logger).
		WithConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()).
		Build()
	if err != nil {
		return err
	}
	if !e.Run() {
		return fmt.Errorf("engine %s did not start", e.ID())
	}
	defer func() {
		if stopErr := e.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	if opts.watch && opts.configPath != "" {
		overlay := func(c config.Config) (config.Config, error) { return opts.overlay(cmd, c) }
		w := config.NewWatcher(opts.configPath, 0, logger, reloader(e, cfg, overlay, logger))
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop() //nolint:errcheck
	}

	return pump(cmd.InOrStdin(), e, opts.json, defaultLevel)
}

// reloader returns a watcher callback that applies each reloaded
// configuration to e after passing it through overlay.
func reloader(e *engine.Engine, current config.Config, overlay func(config.Config) (config.Config, error), logger *zap.Logger) func(config.Config) {
	var mu sync.Mutex
	return func(loaded config.Config) {
		mu.Lock()
		defer mu.Unlock()
		next, err := overlay(loaded)
		if err != nil {
			logger.Warn("reloaded configuration rejected", zap.Error(err))
			return
		}
		if err := config.Apply(e, current, next, logger); err != nil {
			logger.Warn("applying configuration failed", zap.Error(err))
			return
		}
		current = next
	}
}

// pump submits every line of r until EOF.
func pump(r io.Reader, e *engine.Engine, parseJSON bool, defaultLevel core.Level) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var p fastjson.Parser
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !parseJSON {
			e.Log(defaultLevel, line)
			continue
		}
		entry := parseJSONLine(&p, line, defaultLevel)
		e.LogEntry(entry)
	}
	return scanner.Err()
}

// parseJSONLine extracts level, message and time from a JSON log line.
func parseJSONLine(p *fastjson.Parser, line string, defaultLevel core.Level) core.Entry {
	entry := core.Entry{Level: defaultLevel, Message: line}

	v, err := p.Parse(line)
	if err != nil || v.Type() != fastjson.TypeObject {
		return entry
	}

	for _, key := range []string{"level", "severity"} {
		if s := v.GetStringBytes(key); s != nil {
			if level, err := core.ParseLevel(string(s)); err == nil {
				entry.Level = level
			}
			break
		}
	}
	for _, key := range []string{"message", "msg"} {
		if v.Exists(key) {
			entry.Message = strings.TrimSpace(string(v.GetStringBytes(key)))
			break
		}
	}
	for _, key := range []string{"time", "ts"} {
		if s := v.GetStringBytes(key); s != nil {
			if t, err := time.Parse(time.RFC3339Nano, string(s)); err == nil {
				entry.Time = t
			}
			break
		}
	}
	return entry
}
