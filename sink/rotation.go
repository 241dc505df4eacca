package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultMaxSizeBytes is the size threshold used when RotateBySize is set
// without MaxSizeBytes.
const DefaultMaxSizeBytes int64 = 10_000_000

// dateLayout is the date part of rotated file names.
const dateLayout = "20060102"

// Reason tells why a rotation was triggered
type Reason int

const (
	// NoRotation means the current file can take the next line
	NoRotation Reason = iota
	// DateChanged means the local calendar date moved on
	DateChanged
	// SizeExceeded means the next line would push the file past MaxSizeBytes
	SizeExceeded
)

// String returns the string representation of the reason
func (r Reason) String() string {
	switch r {
	case DateChanged:
		return "date"
	case SizeExceeded:
		return "size"
	default:
		return "none"
	}
}

// Rotator names the files of a File output and decides when the active one
// must be replaced. File names follow
//
//	<Directory>/<BaseName>_<YYYYMMDD>_<index>.log
//
// where the date is the local date the file was opened on and the index
// starts at 0 for every date. Compressed files carry an extra ".gz".
type Rotator struct {
	dir     string
	base    string
	byDate  bool
	bySize  bool
	maxSize int64
	clock   func() time.Time
	date    string
	index   int
}

// NewRotator creates a rotator for cfg. It does not touch the filesystem.
func NewRotator(cfg File, clock func() time.Time) *Rotator {
	if clock == nil {
		clock = time.Now
	}
	maxSize := cfg.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}
	return &Rotator{
		dir:     cfg.Directory,
		base:    cfg.BaseName,
		byDate:  cfg.RotateByDate,
		bySize:  cfg.RotateBySize,
		maxSize: maxSize,
		clock:   clock,
	}
}

// FileName returns the path for the given date and index.
func (r *Rotator) FileName(date string, index int) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s_%s_%d.log", r.base, date, index))
}

// Path returns the path of the active file.
func (r *Rotator) Path() string {
	return r.FileName(r.date, r.index)
}

// Start selects the first file for today, skipping indices that are
// already full or compressed so a restart never appends past the limit.
func (r *Rotator) Start() (string, error) {
	r.date = r.clock().Format(dateLayout)
	r.index = 0
	return r.skipUsed()
}

// Check reports whether writing n more bytes to a file of the given size
// requires a rotation. A date change wins over a size overflow.
func (r *Rotator) Check(size int64, n int) Reason {
	if r.byDate && r.clock().Format(dateLayout) != r.date {
		return DateChanged
	}
	if r.bySize && size > 0 && size+int64(n) > r.maxSize {
		return SizeExceeded
	}
	return NoRotation
}

// Advance moves to the next file for the given reason and returns its path.
func (r *Rotator) Advance(reason Reason) (string, error) {
	switch reason {
	case DateChanged:
		return r.Start()
	case SizeExceeded:
		r.index++
		return r.skipUsed()
	default:
		return r.Path(), nil
	}
}

func (r *Rotator) skipUsed() (string, error) {
	for {
		path := r.Path()
		if _, err := os.Stat(path + gzipSuffix); err == nil {
			r.index++
			continue
		}
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", err
		}
		if !r.bySize || info.Size() < r.maxSize {
			return path, nil
		}
		r.index++
	}
}
