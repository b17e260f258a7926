// Package daemon keeps the repo catalog fresh while watch mode runs.
//
// The daemon:
// 1. Watches the configured scan paths for filesystem changes
// 2. Debounces bursts of events into a single rescan
// 3. Optionally rescans on a fixed interval as a fallback
// 4. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RescanFunc refreshes the catalog once: scan the paths, reconcile
// against each host, and record what changed.
type RescanFunc func(ctx context.Context) error

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long a burst of file events must go
	// quiet before a rescan runs.
	DebounceInterval time.Duration

	// RescanInterval forces a rescan even when no file events arrive.
	// Zero disables the timer.
	RescanInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 2 * time.Second,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon watches scan paths and reruns discovery when they change.
//
// Watching is not recursive: a new clone appears as a create event on
// its parent scan path, which is the event that matters. Edits deep
// inside existing clones do not trigger rescans.
type Daemon struct {
	scanPaths []string
	rescan    RescanFunc
	config    *Config

	watcher *fsnotify.Watcher

	pending   map[string]time.Time // changed path -> last event
	pendingMu sync.Mutex
	rescanMu  sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a daemon that calls rescan when scanPaths change.
//
// Use Start() to begin watching.
func New(scanPaths []string, rescan RescanFunc) (*Daemon, error) {
	return NewWithConfig(scanPaths, rescan, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(scanPaths []string, rescan RescanFunc, config *Config) (*Daemon, error) {
	if len(scanPaths) == 0 {
		return nil, fmt.Errorf("scanPaths cannot be empty")
	}
	if rescan == nil {
		return nil, fmt.Errorf("rescan cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		scanPaths: scanPaths,
		rescan:    rescan,
		config:    config,
		watcher:   watcher,
		pending:   make(map[string]time.Time),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// The daemon will:
// 1. Perform an initial rescan
// 2. Start watching the scan paths
// 3. Rescan after debounced file changes, and on the fixed interval
//    when one is configured
//
// This blocks until ctx is cancelled or an error occurs.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting watch daemon")

	d.runRescan()

	watched := 0
	for _, path := range d.scanPaths {
		if err := d.watcher.Add(path); err != nil {
			d.config.Logger.Printf("Cannot watch %s: %v", path, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no scan paths could be watched")
	}

	d.config.Logger.Printf("Watching: %s", strings.Join(d.scanPaths, ", "))

	d.wg.Add(2)
	go d.watchFileEvents()
	go d.processPending()

	if d.config.RescanInterval > 0 {
		d.wg.Add(1)
		go d.rescanOnInterval()
	}

	// Wait for shutdown
	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	// Signal shutdown
	d.cancel()

	// Close watcher
	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	// Wait for goroutines to finish
	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// runRescan refreshes the catalog once. Failures are logged and
// retried on the next cycle, never fatal.
func (d *Daemon) runRescan() {
	d.rescanMu.Lock()
	defer d.rescanMu.Unlock()

	d.config.Logger.Println("Rescanning")
	if err := d.rescan(d.ctx); err != nil {
		d.config.Logger.Printf("Rescan failed: %v", err)
	}
}

// watchFileEvents monitors filesystem events and queues changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			d.config.Logger.Printf("File event: %s %s", event.Op, event.Name)
			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange records a changed path for the debounced rescan.
func (d *Daemon) queueChange(path string) {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	d.pending[path] = time.Now()
}

// processPending runs a rescan once queued changes have gone quiet.
func (d *Daemon) processPending() {
	defer d.wg.Done()

	interval := d.config.DebounceInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			if d.takePendingIfQuiet() {
				d.runRescan()
			}
		}
	}
}

// takePendingIfQuiet clears the queue and reports true when every
// queued change is older than the debounce interval.
func (d *Daemon) takePendingIfQuiet() bool {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	if len(d.pending) == 0 {
		return false
	}
	now := time.Now()
	for _, queuedAt := range d.pending {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			return false
		}
	}

	d.config.Logger.Printf("%d paths changed", len(d.pending))
	d.pending = make(map[string]time.Time)
	return true
}

// rescanOnInterval forces periodic rescans when no file events arrive.
func (d *Daemon) rescanOnInterval() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.RescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.runRescan()
		}
	}
}
