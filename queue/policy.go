package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidCapacity is returned for a non-positive capacity.
	ErrInvalidCapacity = errors.New("queue capacity must be positive")
	// ErrInvalidPolicy is returned for an unknown overflow policy.
	ErrInvalidPolicy = errors.New("unknown overflow policy")
	// ErrInvalidTimeout is returned for a negative wait timeout.
	ErrInvalidTimeout = errors.New("wait timeout must not be negative")
)

// Policy defines how a full queue treats a new entry
type Policy int

const (
	// Drop discards the new entry and never blocks
	Drop Policy = iota
	// Overwrite evicts the oldest queued entry to make room
	Overwrite
	// Wait blocks the caller until space is available or the queue closes
	Wait
	// WaitTimeout blocks like Wait but gives up after Config.WaitTimeout
	WaitTimeout
)

const (
	// DefaultCapacity is the number of entries a queue holds by default.
	DefaultCapacity = 200
	// DefaultWaitTimeout bounds WaitTimeout when no timeout is configured.
	DefaultWaitTimeout = time.Second
)

// String returns the string representation of the policy
func (p Policy) String() string {
	switch p {
	case Drop:
		return "drop"
	case Overwrite:
		return "overwrite"
	case Wait:
		return "wait"
	case WaitTimeout:
		return "wait_timeout"
	default:
		return "unknown"
	}
}

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p >= Drop && p <= WaitTimeout
}

// ParsePolicy converts a policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop":
		return Drop, nil
	case "overwrite":
		return Overwrite, nil
	case "wait", "block":
		return Wait, nil
	case "wait_timeout", "wait-timeout", "waittimeout":
		return WaitTimeout, nil
	default:
		return Drop, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Config holds the queue sizing and admission policy
type Config struct {
	// Capacity is the maximum number of queued entries (default: 200)
	Capacity int `yaml:"capacity"`
	// Policy applies when the queue is full (default: Drop)
	Policy Policy `yaml:"overflow_policy"`
	// WaitTimeout bounds the WaitTimeout policy (0 = DefaultWaitTimeout)
	WaitTimeout time.Duration `yaml:"wait_timeout"`
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:    DefaultCapacity,
		Policy:      Drop,
		WaitTimeout: DefaultWaitTimeout,
	}
}

// Validate reports the first configuration error, if any.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Capacity)
	}
	if !c.Policy.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPolicy, c.Policy)
	}
	if c.WaitTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.WaitTimeout)
	}
	return nil
}

// Outcome is the result of a Push
type Outcome int

const (
	// Queued means the entry was appended without displacing anything
	Queued Outcome = iota
	// Overwrote means the entry was appended after evicting the oldest one
	Overwrote
	// Dropped means the queue was full under the Drop policy
	Dropped
	// TimedOut means the WaitTimeout policy expired before space freed up
	TimedOut
	// Closed means the queue was closed before the entry could be admitted
	Closed
)

// Accepted reports whether the entry was admitted to the queue.
func (o Outcome) Accepted() bool {
	return o == Queued || o == Overwrote
}

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Queued:
		return "queued"
	case Overwrote:
		return "overwrote"
	case Dropped:
		return "dropped"
	case TimedOut:
		return "timed_out"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
