// FILE: lixenwraith/compose/watch.go
package compose

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// PollInterval for file stat checks (minimum 100ms)
	PollInterval time.Duration

	// Debounce duration to avoid rapid re-resolution
	Debounce time.Duration

	// MaxWatchers limits concurrent subscriber channels
	MaxWatchers int

	// ReloadTimeout bounds each re-resolution
	ReloadTimeout time.Duration

	// VerifyPermissions refuses to reload a file whose group/world permissions changed
	VerifyPermissions bool
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:      DefaultPollInterval,
		Debounce:          DefaultDebounce,
		MaxWatchers:       DefaultMaxWatchers,
		ReloadTimeout:     DefaultReloadTimeout,
		VerifyPermissions: true,
	}
}

// Update is delivered to subscribers after the watched files change. On
// success Configurations holds the freshly resolved list; otherwise Err is set
// and the watcher keeps its previous configurations.
type Update struct {
	Configurations []*Configuration
	Changed        []string // paths whose change triggered this update
	Err            error
}

type fileState struct {
	modTime time.Time
	size    int64
	mode    os.FileMode
	exists  bool
}

// Watcher polls the files behind a list of identifiers and re-resolves all
// configurations when any of them changes.
type Watcher struct {
	composer *Composer
	ids      []string
	types    []string
	paths    []string
	opts     WatchOptions

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu            sync.RWMutex
	current       []*Configuration
	pending       map[string]bool
	subscribers   map[int64]chan Update
	debounceTimer *time.Timer

	states           map[string]fileState // owned by the watch loop
	watching         atomic.Bool
	reloadInProgress atomic.Bool
	subscriberID     atomic.Int64
}

// Watch resolves ids once, like GetConfigurations at VerbosityQuiet, then
// keeps polling their files until ctx is cancelled or Stop is called. An
// initial failure is returned and no watcher is started.
func (c *Composer) Watch(ctx context.Context, ids []string, types []string, opts WatchOptions) (*Watcher, error) {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.MaxWatchers <= 0 {
		opts.MaxWatchers = DefaultMaxWatchers
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}

	configs, err := c.GetConfigurations(ids, types, VerbosityQuiet)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(ids))
	for i, id := range ids {
		path, err := c.loader.Locate(id)
		if err != nil {
			return nil, err
		}
		paths[i] = path
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		composer:    c,
		ids:         append([]string(nil), ids...),
		types:       append([]string(nil), types...),
		paths:       paths,
		opts:        opts,
		ctx:         wctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		current:     configs,
		pending:     make(map[string]bool),
		subscribers: make(map[int64]chan Update),
		states:      make(map[string]fileState, len(paths)),
	}

	for _, path := range paths {
		w.states[path] = statFile(path)
	}

	w.watching.Store(true)
	go w.watchLoop()

	return w, nil
}

// Current returns the most recently resolved configurations
func (w *Watcher) Current() []*Configuration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Paths returns the watched file paths in identifier order
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// IsWatching returns true while the poll loop runs
func (w *Watcher) IsWatching() bool {
	return w.watching.Load()
}

// SubscriberCount returns the number of open subscriber channels
func (w *Watcher) SubscriberCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subscribers)
}

// Subscribe returns a channel receiving every Update. The channel is closed
// when the watcher stops. Slow subscribers miss updates rather than block.
func (w *Watcher) Subscribe() <-chan Update {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.subscribers) >= w.opts.MaxWatchers || w.ctx.Err() != nil {
		// Closed channel to prevent resource exhaustion
		ch := make(chan Update)
		close(ch)
		return ch
	}

	ch := make(chan Update, subscriberBuffer)
	id := w.subscriberID.Add(1)
	w.subscribers[id] = ch

	go func() {
		<-w.ctx.Done()
		w.mu.Lock()
		delete(w.subscribers, id)
		close(ch)
		w.mu.Unlock()
	}()

	return ch
}

// Stop terminates the watcher and waits briefly for the poll loop to exit
func (w *Watcher) Stop() {
	w.cancel()

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.mu.Unlock()

	select {
	case <-w.done:
	case <-time.After(ShutdownTimeout):
	}
}

// watchLoop is the main file watching loop
func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watching.Store(false)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.checkFiles()
		}
	}
}

// checkFiles compares every watched file against its last known state
func (w *Watcher) checkFiles() {
	var changed []string

	for _, path := range w.paths {
		prev := w.states[path]
		cur := statFile(path)

		if !cur.exists {
			if prev.exists {
				w.states[path] = cur
				w.notify(Update{
					Changed: []string{path},
					Err:     fmt.Errorf("%w: '%s' was removed", ErrFileNotFound, path),
				})
			}
			continue
		}

		// Group/world permission changes are reported, never reloaded
		if w.opts.VerifyPermissions && prev.exists && (cur.mode&0077) != (prev.mode&0077) {
			w.states[path] = cur
			w.notify(Update{
				Changed: []string{path},
				Err:     fmt.Errorf("permissions of config file '%s' changed from %v to %v", path, prev.mode, cur.mode),
			})
			continue
		}

		if !prev.exists || !cur.modTime.Equal(prev.modTime) || cur.size != prev.size {
			w.states[path] = cur
			changed = append(changed, path)
		}
	}

	if len(changed) == 0 {
		return
	}

	w.mu.Lock()
	for _, path := range changed {
		w.pending[path] = true
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, w.reload)
	w.mu.Unlock()
}

// reload re-resolves all configurations after a debounced change
func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}
	if !w.reloadInProgress.CompareAndSwap(false, true) {
		return
	}
	defer w.reloadInProgress.Store(false)

	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for _, path := range w.paths {
		if w.pending[path] {
			changed = append(changed, path)
		}
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(w.ctx, w.opts.ReloadTimeout)
	defer cancel()

	type result struct {
		configs []*Configuration
		err     error
	}
	done := make(chan result, 1)
	go func() {
		configs, err := w.composer.GetConfigurations(w.ids, w.types, VerbosityQuiet)
		done <- result{configs: configs, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			w.composer.logger.Warn("config re-resolution failed", "files", changed, "error", res.err)
			w.notify(Update{Changed: changed, Err: res.err})
			return
		}
		w.mu.Lock()
		w.current = res.configs
		w.mu.Unlock()
		w.composer.logger.Debug("config re-resolved", "files", changed, "configs", len(res.configs))
		w.notify(Update{Configurations: res.configs, Changed: changed})

	case <-ctx.Done():
		w.notify(Update{Changed: changed, Err: fmt.Errorf("config re-resolution: %w", ctx.Err())})
	}
}

// notify sends an update to all subscribers without blocking
func (w *Watcher) notify(u Update) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.subscribers {
		select {
		case ch <- u:
		default:
			// Channel full, subscriber misses this update
		}
	}
}

// statFile captures the fields used for change detection
func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{
		modTime: info.ModTime(),
		size:    info.Size(),
		mode:    info.Mode(),
		exists:  true,
	}
}
