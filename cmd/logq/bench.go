package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/engine"
	"github.com/philipp01105/logq/sink"
)

type benchOptions struct {
	engineFlags
	producers int
	entries   int
	rate      float64
	keep      bool
}

func newBenchCmd() *cobra.Command {
	opts := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the engine under concurrent producers",
		Long: `Start --producers goroutines that each submit --entries messages, then
flush, stop and print the engine counters.

Lines are discarded unless --keep is given, so the numbers reflect the
queue and dispatcher rather than the output device.`,
		Example: `  logq bench --producers 8 --entries 100000 --policy overwrite --capacity 1024
  logq bench --policy wait --rate 5000 --keep --output file --dir /tmp/bench`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, opts)
		},
	}
	opts.engineFlags.bind(cmd)
	fs := cmd.Flags()
	fs.IntVarP(&opts.producers, "producers", "p", 4, "Number of concurrent producers")
	fs.IntVarP(&opts.entries, "entries", "n", 10000, "Entries per producer")
	fs.Float64Var(&opts.rate, "rate", 0, "Entries per second per producer (0 = unlimited)")
	fs.BoolVar(&opts.keep, "keep", false, "Write lines to the configured output instead of discarding them")
	return cmd
}

// benchResult is what a bench run measured.
type benchResult struct {
	producers int
	submitted int
	elapsed   time.Duration
	flushed   bool
	stats     engine.Snapshot
}

func runBench(cmd *cobra.Command, opts *benchOptions) error {
	if opts.producers <= 0 || opts.entries < 0 {
		return errors.New("--producers must be positive and --entries must not be negative")
	}
	cfg, err := opts.resolve(cmd)
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
	if !opts.keep {
		b.WithOutput(sink.Custom{Receiver: sink.ReceiverFunc(func(string, any) error { return nil })})
	}
	e, err := b.WithDiagnostics(logger).
		WithConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()).
		Build()
	if err != nil {
		return err
	}

	res, err := bench(cmd.Context(), e, opts.producers, opts.entries, opts.rate)
	if err != nil {
		return err
	}
	renderBench(cmd.ErrOrStderr(), res)
	return nil
}

// bench runs the producers against e and stops it afterwards.
func bench(ctx context.Context, e *engine.Engine, producers, entries int, perSecond float64) (benchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !e.Run() {
		return benchResult{}, fmt.Errorf("engine %s did not start", e.ID())
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < producers; p++ {
		g.Go(func() error {
			limit := rate.Inf
			if perSecond > 0 {
				limit = rate.Limit(perSecond)
			}
			limiter := rate.NewLimiter(limit, 1)
			for i := 0; i < entries; i++ {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				e.Logf(core.InfoLevel, "producer=%d seq=%d", p, i)
			}
			return nil
		})
	}
	runErr := g.Wait()

	flushed := e.Flush()
	elapsed := time.Since(start)
	stopErr := e.Stop()

	res := benchResult{
		producers: producers,
		submitted: producers * entries,
		elapsed:   elapsed,
		flushed:   flushed,
		stats:     e.Stats(),
	}
	if runErr != nil {
		return res, runErr
	}
	return res, stopErr
}

func renderBench(w io.Writer, res benchResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("METRIC"),
		text.FgHiCyan.Sprint("VALUE"),
	})

	perSec := 0.0
	if res.elapsed > 0 {
		perSec = float64(res.stats.Delivered) / res.elapsed.Seconds()
	}
	flushed := text.FgGreen.Sprint("yes")
	if !res.flushed {
		flushed = text.FgRed.Sprint("no")
	}

	t.AppendRows([]table.Row{
		{"producers", res.producers},
		{"submitted", res.submitted},
		{"accepted", res.stats.Accepted},
		{"dropped", res.stats.DroppedTotal},
		{"overwritten", res.stats.Overwritten},
		{"timed out", res.stats.TimedOut},
		{"delivered", res.stats.Delivered},
		{"write failures", res.stats.WriteFailures + res.stats.CallbackFailures},
		{"rotations", res.stats.Rotations},
		{"abandoned", res.stats.Abandoned},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"flushed", flushed},
		{"elapsed", res.elapsed.Round(time.Microsecond)},
		{"delivered/s", fmt.Sprintf("%.0f", perSec)},
	})
	t.Render()
}
