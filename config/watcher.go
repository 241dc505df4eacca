package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounceInterval is the time to wait before reloading after the
// last change to the file was detected.
const DefaultDebounceInterval = 200 * time.Millisecond

// Watcher reloads a configuration file when it changes and hands every
// valid new version to OnChange. Invalid versions are logged and skipped.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(Config)
	logger   *zap.Logger

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	timer     *time.Timer
}

// NewWatcher creates a watcher for path. A zero debounce selects
// DefaultDebounceInterval.
func NewWatcher(path string, debounce time.Duration, logger *zap.Logger, onChange func(Config)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		logger:   logger.With(zap.String("config", path)),
	}
}

// Start begins watching. The parent directory is watched so that editors
// replacing the file by rename are noticed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	w.fsWatcher = fsw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	// Capture channels before releasing lock to avoid races with Stop
	go w.processEvents(fsw.Events, fsw.Errors, w.stopCh, w.doneCh)

	w.logger.Info("watching configuration file")
	return nil
}

// Stop ends watching and cancels a pending reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	fsw, done := w.fsWatcher, w.doneCh
	w.mu.Unlock()

	<-done
	return fsw.Close()
}

func (w *Watcher) processEvents(events <-chan fsnotify.Event, errs <-chan error, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	target := filepath.Clean(w.path)
	for {
		select {
		case <-stop:
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("configuration file changed", zap.Stringer("op", event.Op))
			w.reloadDebounced()

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.logger.Error("fsnotify error", zap.Error(err))
		}
	}
}

func (w *Watcher) reloadDebounced() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("ignoring invalid configuration", zap.Error(err))
		return
	}
	w.logger.Info("configuration reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
