package sink

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// File selects rotating log files.
type File struct {
	// Directory holds the log files; it is created if missing
	Directory string `yaml:"directory"`
	// BaseName is the file name prefix
	BaseName string `yaml:"base_name"`
	// RotateByDate starts a new file when the local date changes
	RotateByDate bool `yaml:"rotate_by_date"`
	// RotateBySize starts a new file before MaxSizeBytes would be exceeded
	RotateBySize bool `yaml:"rotate_by_size"`
	// MaxSizeBytes is the size threshold (0 = DefaultMaxSizeBytes)
	MaxSizeBytes int64 `yaml:"max_size_bytes"`
	// Compress gzips every file that was rotated away from
	Compress bool `yaml:"compress"`
}

// Kind implements Output.
func (File) Kind() Kind { return KindFile }

func (f File) validate() error {
	if f.Directory == "" {
		return fmt.Errorf("%w: file output needs a directory", ErrInvalidOutput)
	}
	if f.BaseName == "" || strings.ContainsAny(f.BaseName, `/\`) {
		return fmt.Errorf("%w: invalid base name %q", ErrInvalidOutput, f.BaseName)
	}
	if f.MaxSizeBytes < 0 {
		return fmt.Errorf("%w: negative max size %d", ErrInvalidOutput, f.MaxSizeBytes)
	}
	return nil
}

// FileSink appends lines to the active file of a Rotator. The rotation
// check runs before every write. If the next file cannot be opened the sink
// becomes unavailable and every later write fails with ErrUnavailable.
type FileSink struct {
	mu       sync.Mutex
	cfg      File
	rot      *Rotator
	file     *os.File
	size     int64
	failed   error
	closed   bool
	logger   *zap.Logger
	onRotate func(from, to string)
	wg       sync.WaitGroup // pending compressions
}

// NewFileSink creates the directory and opens the first file.
func NewFileSink(cfg File, env Env) (*FileSink, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	env.applyDefaults()

	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, err
	}

	s := &FileSink{
		cfg:      cfg,
		rot:      NewRotator(cfg, env.Clock),
		logger:   env.Logger,
		onRotate: env.OnRotate,
	}
	path, err := s.rot.Start()
	if err != nil {
		return nil, err
	}
	if err := s.open(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Write appends the line, rotating first when a trigger fires.
func (s *FileSink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.failed != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, s.failed)
	}

	if reason := s.rot.Check(s.size, len(line)); reason != NoRotation {
		if err := s.rotate(reason); err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}

	n, err := s.file.Write(line)
	s.size += int64(n)
	return err
}

// Path returns the path of the active file.
func (s *FileSink) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rot.Path()
}

// Size returns the number of bytes in the active file.
func (s *FileSink) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Available reports whether writes can still succeed.
func (s *FileSink) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.failed == nil
}

// Close syncs and closes the active file and waits for pending compressions.
func (s *FileSink) Close() error {
	s.mu.Lock()
	var err error
	if !s.closed {
		s.closed = true
		err = s.closeFile()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *FileSink) open(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		return multierr.Append(err, file.Close())
	}
	s.file = file
	s.size = info.Size()
	return nil
}

func (s *FileSink) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := multierr.Combine(s.file.Sync(), s.file.Close())
	s.file = nil
	return err
}

// rotate replaces the active file. mu must be held.
func (s *FileSink) rotate(reason Reason) error {
	from := s.rot.Path()
	if err := s.closeFile(); err != nil {
		s.logger.Warn("closing rotated log file failed", zap.String("path", from), zap.Error(err))
	}
	if s.cfg.Compress {
		s.compressAsync(from)
	}

	to, err := s.rot.Advance(reason)
	if err == nil {
		err = s.open(to)
	}
	if err != nil {
		s.failed = err
		s.logger.Error("opening next log file failed, file output disabled",
			zap.String("previous", from),
			zap.Stringer("reason", reason),
			zap.Error(err))
		return err
	}

	s.logger.Debug("rotated log file",
		zap.String("from", from),
		zap.String("to", to),
		zap.Stringer("reason", reason))
	if s.onRotate != nil {
		s.onRotate(from, to)
	}
	return nil
}

func (s *FileSink) compressAsync(path string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := compressFile(path); err != nil {
			s.logger.Warn("compressing rotated log file failed", zap.String("path", path), zap.Error(err))
		}
	}()
}
