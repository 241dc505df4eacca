package sink

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeClock is a settable clock for date rotation tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 12, 0, 0, 0, time.Local)
}

func logFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestFileSink_WritesToNamedFile(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: day(5)}

	s, err := NewFileSink(File{Directory: dir, BaseName: "app"}, Env{Clock: clock.Now})
	require.NoError(t, err)

	require.NoError(t, s.Write([]byte("hello\n")))
	require.NoError(t, s.Write([]byte("world\n")))
	assert.Equal(t, filepath.Join(dir, "app_20240305_0.log"), s.Path())
	assert.EqualValues(t, 12, s.Size())
	require.NoError(t, s.Close())

	data, err := os.ReadFile(filepath.Join(dir, "app_20240305_0.log"))
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(data))

	assert.ErrorIs(t, s.Write([]byte("late\n")), ErrClosed)
}

func TestFileSink_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	s, err := NewFileSink(File{Directory: dir, BaseName: "app"}, Env{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileSink_RotatesBySize(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: day(1)}
	var rotations []string

	const maxSize = 100
	s, err := NewFileSink(File{
		Directory:    dir,
		BaseName:     "app",
		RotateBySize: true,
		MaxSizeBytes: maxSize,
	}, Env{Clock: clock.Now, OnRotate: func(from, to string) {
		rotations = append(rotations, filepath.Base(from)+"->"+filepath.Base(to))
	}})
	require.NoError(t, err)

	line := []byte(strings.Repeat("x", 29) + "\n") // 30 bytes
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Write(line))
	}
	require.NoError(t, s.Close())

	files := logFiles(t, dir)
	assert.Equal(t, []string{
		"app_20240301_0.log",
		"app_20240301_1.log",
		"app_20240301_2.log",
		"app_20240301_3.log",
	}, files)
	for _, name := range files {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.LessOrEqual(t, info.Size(), int64(maxSize), name)
	}
	assert.Equal(t, []string{
		"app_20240301_0.log->app_20240301_1.log",
		"app_20240301_1.log->app_20240301_2.log",
		"app_20240301_2.log->app_20240301_3.log",
	}, rotations)
}

func TestFileSink_OversizedLineGoesToFreshFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(File{
		Directory:    dir,
		BaseName:     "big",
		RotateBySize: true,
		MaxSizeBytes: 10,
	}, Env{Clock: (&fakeClock{now: day(1)}).Now})
	require.NoError(t, err)

	require.NoError(t, s.Write([]byte("abc\n")))
	require.NoError(t, s.Write([]byte(strings.Repeat("y", 40)+"\n")))
	require.NoError(t, s.Write([]byte("abc\n")))
	require.NoError(t, s.Close())

	assert.Equal(t, []string{"big_20240301_0.log", "big_20240301_1.log", "big_20240301_2.log"}, logFiles(t, dir))
}

func TestFileSink_RotatesByDate(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: day(1)}

	s, err := NewFileSink(File{Directory: dir, BaseName: "app", RotateByDate: true}, Env{Clock: clock.Now})
	require.NoError(t, err)

	require.NoError(t, s.Write([]byte("monday\n")))
	clock.Set(day(2))
	require.NoError(t, s.Write([]byte("tuesday\n")))
	require.NoError(t, s.Write([]byte("tuesday again\n")))
	require.NoError(t, s.Close())

	assert.Equal(t, []string{"app_20240301_0.log", "app_20240302_0.log"}, logFiles(t, dir))

	data, err := os.ReadFile(filepath.Join(dir, "app_20240302_0.log"))
	require.NoError(t, err)
	assert.Equal(t, "tuesday\ntuesday again\n", string(data))
}

func TestFileSink_DateChangeWithoutDateRotation(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: day(1)}

	s, err := NewFileSink(File{Directory: dir, BaseName: "app"}, Env{Clock: clock.Now})
	require.NoError(t, err)
	require.NoError(t, s.Write([]byte("a\n")))
	clock.Set(day(2))
	require.NoError(t, s.Write([]byte("b\n")))
	require.NoError(t, s.Close())

	assert.Equal(t, []string{"app_20240301_0.log"}, logFiles(t, dir))
}

func TestFileSink_RestartSkipsFullFiles(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: day(7)}
	cfg := File{Directory: dir, BaseName: "app", RotateBySize: true, MaxSizeBytes: 20}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_20240307_0.log"), bytes.Repeat([]byte("z"), 20), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_20240307_1.log.gz"), []byte{}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_20240307_2.log"), []byte("half\n"), 0644))

	s, err := NewFileSink(cfg, Env{Clock: clock.Now})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app_20240307_2.log"), s.Path())
	assert.EqualValues(t, 5, s.Size())

	require.NoError(t, s.Write([]byte("more\n")))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(filepath.Join(dir, "app_20240307_2.log"))
	require.NoError(t, err)
	assert.Equal(t, "half\nmore\n", string(data))
}

func TestFileSink_BecomesUnavailable(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: day(1)}
	obs, logs := observer.New(zap.ErrorLevel)

	s, err := NewFileSink(File{Directory: dir, BaseName: "app", RotateByDate: true}, Env{
		Clock:  clock.Now,
		Logger: zap.New(obs),
	})
	require.NoError(t, err)
	require.NoError(t, s.Write([]byte("before\n")))

	// a directory squatting on the next file name makes the open fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "app_20240302_0.log"), 0755))
	clock.Set(day(2))

	err = s.Write([]byte("after\n"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, s.Available())

	err = s.Write([]byte("still after\n"))
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.Equal(t, 1, logs.FilterMessage("opening next log file failed, file output disabled").Len())
	assert.NoError(t, s.Close())
}

func TestFileSink_CompressesRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: day(1)}

	s, err := NewFileSink(File{
		Directory:    dir,
		BaseName:     "app",
		RotateBySize: true,
		MaxSizeBytes: 16,
		Compress:     true,
	}, Env{Clock: clock.Now})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Write([]byte(fmt.Sprintf("line number %d\n", i))))
	}
	require.NoError(t, s.Close())

	assert.Equal(t, []string{
		"app_20240301_0.log.gz",
		"app_20240301_1.log.gz",
		"app_20240301_2.log",
	}, logFiles(t, dir))

	f, err := os.Open(filepath.Join(dir, "app_20240301_1.log.gz"))
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "line number 1\n", string(data))
}

func TestRotator_Check(t *testing.T) {
	clock := &fakeClock{now: day(1)}
	r := NewRotator(File{Directory: "/logs", BaseName: "svc", RotateBySize: true, RotateByDate: true, MaxSizeBytes: 50}, clock.Now)
	_, err := r.Start()
	require.NoError(t, err)

	assert.Equal(t, NoRotation, r.Check(0, 80), "an empty file takes any line")
	assert.Equal(t, NoRotation, r.Check(40, 10))
	assert.Equal(t, SizeExceeded, r.Check(40, 11))

	clock.Set(day(2))
	assert.Equal(t, DateChanged, r.Check(40, 11), "date wins over size")

	assert.Equal(t, filepath.Join("/logs", "svc_20240302_3.log"), r.FileName("20240302", 3))
}

func TestRotator_DefaultMaxSize(t *testing.T) {
	r := NewRotator(File{Directory: "/logs", BaseName: "svc", RotateBySize: true}, nil)
	_, err := r.Start()
	require.NoError(t, err)

	assert.Equal(t, NoRotation, r.Check(DefaultMaxSizeBytes-10, 10))
	assert.Equal(t, SizeExceeded, r.Check(DefaultMaxSizeBytes-10, 11))
}
