package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (invalid flags, unusable output).
	ExitCodeError = 1
)

var verbose bool

// rootCmd is the entry point when logq is called without a subcommand.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logq",
		Short: "Bounded-queue log shipper",
		Long: `logq moves log lines from producers to one output through a bounded
queue with an explicit overflow policy (drop, overwrite, wait, wait_timeout).

Use "logq pipe" to route lines from stdin to stdout, stderr or rotating
files, and "logq bench" to measure the engine under concurrent producers.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Report engine diagnostics on stderr")
	cmd.AddCommand(newPipeCmd(), newBenchCmd(), newVersionCmd())
	return cmd
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits with a non-zero code on error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "logq version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

// diagnostics returns the logger for engine diagnostics.
func diagnostics() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("create diagnostics logger: %w", err)
	}
	return logger, nil
}
