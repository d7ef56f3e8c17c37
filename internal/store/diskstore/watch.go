package diskstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/store"
)

// Change reports that the key at Path was modified on disk. An empty Path
// means the change could not be attributed and callers should refresh
// whatever they show.
type Change struct {
	Path string
}

const coalesceDelay = 100 * time.Millisecond

// Watch streams changes until ctx is cancelled. Bursts of filesystem events
// are coalesced. The channel is closed when ctx is done.
func (b *Backend) Watch(ctx context.Context, log logr.Logger) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("diskstore: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				log.V(1).Info("watcher close failed", "error", err.Error())
			}
		})
	}

	dirs, err := collectDirs(b.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("diskstore: enumerate directories: %w", err)
	}
	watched := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("diskstore: watch %s: %w", dir, err)
		}
		watched[dir] = struct{}{}
	}

	changes := make(chan Change, 64)
	go func() {
		defer close(changes)
		defer closeWatcher()

		send := func(c Change) {
			select {
			case changes <- c:
			default:
			}
		}
		co := newCoalescer(coalesceDelay, send)
		defer co.stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.V(1).Info("watcher error", "error", err.Error())
				co.add(Change{})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err == nil {
								watched[dir] = struct{}{}
							}
						}
					}
				}
				if b.ownStamp(evt.Name) {
					continue
				}
				co.add(Change{Path: b.keyForFile(evt.Name)})
			}
		}
	}()
	return changes, nil
}

// keyForFile maps a file below the base directory to the key it belongs to.
func (b *Backend) keyForFile(name string) string {
	rel, err := filepath.Rel(b.basePath, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return store.Root
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if last := parts[len(parts)-1]; strings.HasPrefix(last, ".") {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = unescapeSegment(p)
	}
	return strings.Join(parts, store.Sep)
}

func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// coalescer batches changes and delivers each distinct path once per burst.
// send must not block; it runs under the lock so nothing is delivered after stop.
type coalescer struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
	send    func(Change)
	stopped bool
}

func newCoalescer(delay time.Duration, send func(Change)) *coalescer {
	return &coalescer{delay: delay, send: send, pending: map[string]struct{}{}}
}

func (c *coalescer) add(ch Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pending[ch.Path] = struct{}{}
	if c.timer == nil {
		c.timer = time.AfterFunc(c.delay, c.flush)
	}
}

func (c *coalescer) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = nil
	if c.stopped {
		return
	}
	for p := range c.pending {
		c.send(Change{Path: p})
	}
	c.pending = map[string]struct{}{}
}

func (c *coalescer) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
