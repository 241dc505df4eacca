package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnknownKind is returned for an output selector that is not defined.
	ErrUnknownKind = errors.New("unknown output kind")
	// ErrInvalidOutput is returned when output parameters are incomplete or malformed.
	ErrInvalidOutput = errors.New("invalid output")
	// ErrUnavailable is returned by a file sink whose file could not be reopened.
	ErrUnavailable = errors.New("sink unavailable")
	// ErrClosed is returned by writes to a closed sink.
	ErrClosed = errors.New("sink closed")
)

// Sink delivers formatted lines to a destination. Lines end with '\n'.
// A sink is written by a single goroutine at a time.
type Sink interface {
	Write(line []byte) error
	Close() error
}

// Kind is the canonical output selector.
type Kind int

const (
	// KindFile writes to rotating files
	KindFile Kind = iota
	// KindStdout writes to standard output
	KindStdout
	// KindStderr writes to standard error
	KindStderr
	// KindCustom hands every line to a caller-supplied Receiver
	KindCustom
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseKind converts an output selector name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return KindFile, nil
	case "stdout":
		return KindStdout, nil
	case "stderr":
		return KindStderr, nil
	case "custom":
		return KindCustom, nil
	default:
		return KindStdout, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Output is the configuration of exactly one sink. The concrete types are
// Stdout, Stderr, File and Custom.
type Output interface {
	Kind() Kind
	validate() error
}

// Stdout selects the standard output stream.
type Stdout struct{}

// Stderr selects the standard error stream.
type Stderr struct{}

// Kind implements Output.
func (Stdout) Kind() Kind { return KindStdout }

// Kind implements Output.
func (Stderr) Kind() Kind { return KindStderr }

func (Stdout) validate() error { return nil }
func (Stderr) validate() error { return nil }

// Env carries what sinks need from their owner.
type Env struct {
	// Stdout and Stderr back the console sinks (default: os.Stdout, os.Stderr)
	Stdout io.Writer
	Stderr io.Writer
	// Clock drives date rotation (default: time.Now)
	Clock func() time.Time
	// Logger receives rotation and compression diagnostics (default: no-op)
	Logger *zap.Logger
	// OnRotate is called after a file sink switched to a new file
	OnRotate func(from, to string)
}

func (env *Env) applyDefaults() {
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}
	if env.Clock == nil {
		env.Clock = time.Now
	}
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
}

// Validate checks out without opening anything.
func Validate(out Output) error {
	if out == nil {
		return fmt.Errorf("%w: no output given", ErrInvalidOutput)
	}
	return out.validate()
}

// Open validates out and opens the sink it describes.
func Open(out Output, env Env) (Sink, error) {
	if err := Validate(out); err != nil {
		return nil, err
	}
	env.applyDefaults()

	switch o := out.(type) {
	case Stdout:
		return NewConsoleSink(env.Stdout), nil
	case Stderr:
		return NewConsoleSink(env.Stderr), nil
	case File:
		fs, err := NewFileSink(o, env)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case Custom:
		return NewCallbackSink(o.Receiver, o.UserData), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, out)
	}
}
