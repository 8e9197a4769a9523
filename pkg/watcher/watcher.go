// Package watcher recompiles templates when the files of a project change.
package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/rjt/pkg/scanner"
)

// DefaultDebounceMs is the quiet period before a change is reported.
const DefaultDebounceMs = 200

// Op is the kind of change reported for a file.
type Op int

const (
	// OpChanged means the file was created or written.
	OpChanged Op = iota
	// OpRemoved means the file was removed or renamed away.
	OpRemoved
)

func (o Op) String() string {
	if o == OpRemoved {
		return "removed"
	}
	return "changed"
}

// Event is a debounced change to one file.
type Event struct {
	Path string
	Op   Op
}

// Options configures a FileWatcher.
type Options struct {
	// DebounceMs defaults to DefaultDebounceMs.
	DebounceMs int
	// Scan selects the files events are reported for. Exclude patterns also
	// prune watched directories. Defaults to scanner.SourceScanConfig().
	Scan *scanner.ScanConfig
}

// FileWatcher watches a directory tree and reports debounced changes to
// source files.
//
// Usage:
//
//	fw, err := NewFileWatcher(Options{}, session.Handle, logger)
//	if err != nil {
//	    return err
//	}
//	if err := fw.Start(root); err != nil {
//	    return err
//	}
//	defer fw.Stop()
//
// Several events for the same file inside the debounce window are reported
// once, with the last operation seen. The handler runs on timer goroutines
// and must do its own locking.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	handler  func(Event)
	logger   *slog.Logger
	scan     scanner.ScanConfig
	debounce time.Duration
	root     string

	// Debouncing
	debounceTimers map[string]*time.Timer
	pendingOps     map[string]Op
	debounceMu     sync.Mutex

	// Lifecycle
	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a watcher calling handler for every change.
func NewFileWatcher(options Options, handler func(Event), logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultDebounceMs
	}
	scan := scanner.SourceScanConfig()
	if options.Scan != nil {
		scan = *options.Scan
	}
	if err := scan.Validate(); err != nil {
		watcher.Close()
		return nil, err
	}

	return &FileWatcher{
		watcher:        watcher,
		handler:        handler,
		logger:         logger,
		scan:           scan,
		debounce:       time.Duration(options.DebounceMs) * time.Millisecond,
		debounceTimers: make(map[string]*time.Timer),
		pendingOps:     make(map[string]Op),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start begins watching rootPath and every directory below it that is not
// excluded. It can be called once.
func (fw *FileWatcher) Start(rootPath string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if fw.started {
		return fmt.Errorf("watcher already started")
	}

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	fw.root = root

	if err := fw.watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	if err := fw.addTree(root); err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}
	fw.started = true

	fw.logger.Info("File watcher started", "root", root)
	go fw.eventLoop()
	return nil
}

// addTree watches dir and its subdirectories.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != fw.root && fw.scan.Excluded(fw.rel(path)) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops the watcher and drops pending events. Safe to call more than
// once.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return nil
	}
	fw.stopped = true
	close(fw.stopChan)

	fw.debounceMu.Lock()
	for _, timer := range fw.debounceTimers {
		timer.Stop()
	}
	fw.debounceTimers = make(map[string]*time.Timer)
	fw.pendingOps = make(map[string]Op)
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.logger.Info("File watcher stopped")
	return err
}

func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	rel := fw.rel(path)
	if fw.scan.Excluded(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := fw.addTree(path); err != nil {
				fw.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !fw.scan.Included(rel) {
		return
	}

	fw.logger.Debug("File event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		fw.schedule(path, OpChanged)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		fw.schedule(path, OpRemoved)
	}
}

// schedule (re)starts the debounce timer for path.
func (fw *FileWatcher) schedule(path string, op Op) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, exists := fw.debounceTimers[path]; exists {
		timer.Stop()
	}
	fw.pendingOps[path] = op
	fw.debounceTimers[path] = time.AfterFunc(fw.debounce, func() {
		fw.debounceMu.Lock()
		op, ok := fw.pendingOps[path]
		delete(fw.pendingOps, path)
		delete(fw.debounceTimers, path)
		fw.debounceMu.Unlock()

		if ok {
			fw.handler(Event{Path: path, Op: op})
		}
	})
}

func (fw *FileWatcher) rel(path string) string {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// GetStats returns file watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.debounceMu.Lock()
	pending := len(fw.debounceTimers)
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	running := fw.started && !fw.stopped
	fw.mu.Unlock()

	return FileWatcherStats{
		PendingEvents: pending,
		IsRunning:     running,
	}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	PendingEvents int
	IsRunning     bool
}
