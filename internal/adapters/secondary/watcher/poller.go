// Package watcher detects edits to raw slide-text files by polling.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// ErrStopped is returned by Watch after Stop has been called
var ErrStopped = errors.New("watcher is stopped")

// PollingWatcher implements file watching using polling. Bursts of writes are
// coalesced into one event, emitted once the file has been quiet for the debounce period.
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	logger   *slog.Logger
	files    map[string]fileState
	events   chan ports.FileChangeEvent
	mu       sync.RWMutex
	wg       sync.WaitGroup
	stopped  bool
	stopCh   chan struct{}
}

// fileState is the last observed state of a watched file
type fileState struct {
	Exists   bool
	Size     int64
	ModTime  time.Time
	Checksum string
}

// NewPollingWatcher creates a new polling-based file watcher
func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingWatcher{
		interval: interval,
		debounce: debounce,
		logger:   logger.With("component", "watcher"),
		files:    make(map[string]fileState),
		events:   make(chan ports.FileChangeEvent, 10),
		stopCh:   make(chan struct{}),
	}
}

// NewFromConfig creates a watcher using the configured interval and debounce
func NewFromConfig(cfg entities.WatcherConfig, logger *slog.Logger) *PollingWatcher {
	return NewPollingWatcher(cfg.GetInterval(), cfg.GetDebounce(), logger)
}

// Watch starts watching a file for changes. The file must exist.
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	state, err := w.stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}
	if !state.Exists {
		return nil, fmt.Errorf("initial scan: %s does not exist", absPath)
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil, ErrStopped
	}
	w.files[absPath] = state
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	w.logger.Debug("watching file", slog.String("path", absPath), slog.Duration("interval", w.interval))
	return w.events, nil
}

// Stop stops all poll loops and closes the events channel
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	// poll loops take the lock, so wait without holding it
	w.wg.Wait()
	close(w.events)

	return nil
}

// pollLoop polls one file until the context ends or the watcher stops
func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var pending *ports.FileChangeEvent
	var lastChange time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			changeType, changed, err := w.checkForChanges(path)
			if err != nil {
				w.logger.Warn("watch error", slog.String("path", path), slog.Any("error", err))
				continue
			}

			if changed {
				lastChange = time.Now()
				pending = mergeChange(pending, ports.FileChangeEvent{
					Path:      path,
					Type:      changeType,
					Timestamp: lastChange,
				})
				continue
			}

			if pending == nil || time.Since(lastChange) < w.debounce {
				continue
			}

			select {
			case w.events <- *pending:
				w.logger.Debug("file changed", slog.String("path", path), slog.String("type", pending.Type.String()))
				pending = nil
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// mergeChange folds next into a pending event. A file that was deleted and
// then written again within one burst is reported as created.
func mergeChange(pending *ports.FileChangeEvent, next ports.FileChangeEvent) *ports.FileChangeEvent {
	if pending != nil && pending.Type == ports.Deleted && next.Type == ports.Modified {
		next.Type = ports.Created
	}
	return &next
}

// checkForChanges compares the file with its last observed state
func (w *PollingWatcher) checkForChanges(path string) (ports.ChangeType, bool, error) {
	w.mu.RLock()
	old := w.files[path]
	w.mu.RUnlock()

	// Cheap pre-check so the checksum is only computed when size or mtime moved
	info, err := os.Stat(path)
	switch {
	case err == nil && old.Exists && old.Size == info.Size() && old.ModTime.Equal(info.ModTime()):
		return 0, false, nil
	case err != nil && !os.IsNotExist(err):
		return 0, false, fmt.Errorf("stat file: %w", err)
	}

	current, err := w.stat(path)
	if err != nil {
		return 0, false, err
	}

	var changeType ports.ChangeType
	switch {
	case old.Exists && !current.Exists:
		changeType = ports.Deleted
	case !old.Exists && current.Exists:
		changeType = ports.Created
	case old.Exists && current.Exists && old.Checksum != current.Checksum:
		changeType = ports.Modified
	default:
		// touched without a content change, or still missing
		w.store(path, current)
		return 0, false, nil
	}

	w.store(path, current)
	return changeType, true, nil
}

func (w *PollingWatcher) store(path string, state fileState) {
	w.mu.Lock()
	w.files[path] = state
	w.mu.Unlock()
}

// stat reads the current state of path. A missing file is not an error.
func (w *PollingWatcher) stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileState{}, nil
		}
		return fileState{}, fmt.Errorf("stat file: %w", err)
	}

	checksum, err := calculateChecksum(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileState{}, nil
		}
		return fileState{}, fmt.Errorf("calculate checksum: %w", err)
	}

	return fileState{
		Exists:   true,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Checksum: checksum,
	}, nil
}

// calculateChecksum calculates SHA256 checksum of a file
func calculateChecksum(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is the file the user asked to watch
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Ensure PollingWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*PollingWatcher)(nil)
