package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/philipp01105/logq/config"
	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/engine"
	"github.com/philipp01105/logq/queue"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// stripTime drops the timestamp column of text lines.
func stripTime(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if _, rest, ok := strings.Cut(line, " | "); ok {
			line = rest
		}
		lines = append(lines, line)
	}
	return lines
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "logq version "))
}

func TestPipeCmd_Text(t *testing.T) {
	stdout, _, err := execute(t, "first\n\nsecond\n", "pipe", "--policy", "wait")
	require.NoError(t, err)
	assert.Equal(t, []string{"[INFO]: first", "[INFO]: second"}, stripTime(stdout))
}

func TestPipeCmd_JSON(t *testing.T) {
	input := strings.Join([]string{
		`{"level":"debug","msg":"hidden"}`,
		`{"level":"error","message":"disk full"}`,
		`{"severity":"warn","msg":"slow","time":"2024-05-06T07:08:09Z"}`,
		`not json at all`,
	}, "\n")

	_, stderr, err := execute(t, input, "pipe", "--json", "--policy", "wait", "--output", "stderr", "--default-level", "notify")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"[ERROR]: disk full",
		"[WARNING]: slow",
		"[NOTIFY]: not json at all",
	}, stripTime(stderr))
}

func TestPipeCmd_FileOutput(t *testing.T) {
	dir := t.TempDir()
	input := strings.Repeat("0123456789\n", 10)

	_, _, err := execute(t, input, "pipe",
		"--policy", "wait",
		"--output", "file",
		"--dir", dir,
		"--base-name", "piped",
		"--rotate-size",
		"--max-size", "200",
	)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "piped_*_*.log"))
	require.NoError(t, err)
	assert.Greater(t, len(files), 1)
}

func TestPipeCmd_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_severity: error\nformat: json\nqueue: {overflow_policy: wait}\n"), 0644))

	stdout, _, err := execute(t, "dropped\n", "pipe", "--config", path)
	require.NoError(t, err)
	assert.Empty(t, stdout, "config minimum applies")

	stdout, _, err = execute(t, "kept\n", "pipe", "--config", path, "--level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"message":"kept"`, "explicit flags override the file")
}

func TestReloader_KeepsExplicitFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_severity: error\n"), 0644))

	tests := []struct {
		name string
		args []string
		want core.Level
	}{
		{"flag wins", []string{"--config", path, "--level", "debug"}, core.DebugLevel},
		{"file wins", []string{"--config", path}, core.WarningLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &engineFlags{}
			cmd := &cobra.Command{Use: "pipe"}
			flags.bind(cmd)
			require.NoError(t, cmd.Flags().Parse(tt.args))

			cfg, err := flags.resolve(cmd)
			require.NoError(t, err)
			b, err := cfg.Builder()
			require.NoError(t, err)
			e, err := b.WithConsole(io.Discard, io.Discard).Build()
			require.NoError(t, err)
			defer e.Stop() //nolint:errcheck

			overlay := func(c config.Config) (config.Config, error) { return flags.overlay(cmd, c) }
			reload := reloader(e, cfg, overlay, zap.NewNop())

			edited := config.DefaultConfig()
			edited.MinSeverity = core.WarningLevel
			reload(edited)
			assert.Equal(t, tt.want, e.MinSeverity())

			invalid := edited
			invalid.MinSeverity = core.FatalLevel
			invalid.Queue.Capacity = 0
			reload(invalid)
			assert.Equal(t, tt.want, e.MinSeverity(), "rejected reload leaves the engine unchanged")
		})
	}
}

func TestPipeCmd_InvalidFlags(t *testing.T) {
	_, _, err := execute(t, "", "pipe", "--policy", "spill")
	assert.ErrorIs(t, err, queue.ErrInvalidPolicy)

	_, _, err = execute(t, "", "pipe", "--level", "loud")
	assert.ErrorIs(t, err, core.ErrInvalidLevel)

	_, _, err = execute(t, "", "pipe", "--capacity", "0")
	assert.ErrorIs(t, err, queue.ErrInvalidCapacity)
}

func TestParseJSONLine(t *testing.T) {
	var p fastjson.Parser

	e := parseJSONLine(&p, `{"level":"FATAL","message":"  boom  ","ts":"2024-01-02T03:04:05.5Z"}`, core.InfoLevel)
	assert.Equal(t, core.FatalLevel, e.Level)
	assert.Equal(t, "boom", e.Message)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 5e8, time.UTC), e.Time)

	e = parseJSONLine(&p, `{"level":"bogus","msg":"x"}`, core.WarningLevel)
	assert.Equal(t, core.WarningLevel, e.Level)
	assert.Equal(t, "x", e.Message)

	e = parseJSONLine(&p, `[1,2,3]`, core.InfoLevel)
	assert.Equal(t, "[1,2,3]", e.Message)
	assert.False(t, e.HasTime())
}

func TestBench(t *testing.T) {
	e, err := engine.NewBuilder().
		WithQueue(queue.Config{Capacity: 32, Policy: queue.Wait}).
		WithConsole(&bytes.Buffer{}, nil).
		Build()
	require.NoError(t, err)

	res, err := bench(t.Context(), e, 4, 250, 0)
	require.NoError(t, err)
	assert.True(t, res.flushed)
	assert.Equal(t, 1000, res.submitted)
	assert.EqualValues(t, 1000, res.stats.Accepted)
	assert.EqualValues(t, 1000, res.stats.Delivered)
	assert.Equal(t, engine.StateStopped, e.State())

	var out bytes.Buffer
	renderBench(&out, res)
	assert.Contains(t, out.String(), "delivered")
	assert.Contains(t, out.String(), "1000")
}

func TestBenchCmd(t *testing.T) {
	_, stderr, err := execute(t, "", "bench", "--producers", "2", "--entries", "100", "--policy", "overwrite", "--capacity", "16", "--rate", "100000")
	require.NoError(t, err)
	assert.Contains(t, stderr, "overwritten")

	_, _, err = execute(t, "", "bench", "--producers", "0")
	assert.Error(t, err)
}
