package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a dataset when its files change on disk. Events are
// debounced so editor save sequences trigger one reload, and reloads
// whose content fingerprint matches the previous load are dropped
// without calling back.
type Watcher struct {
	pattern  string
	opts     Options
	debounce time.Duration
	onReload func(*Source)
	logger   *zap.Logger

	fs     *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// watched and lastFingerprint are owned by the run goroutine after
	// Watch returns.
	watched         map[string]bool
	lastFingerprint uint64
}

// Watch starts watching the files behind pattern. src is the currently
// loaded dataset; its fingerprint seeds change detection. onReload runs
// on the watcher goroutine after each successful, genuinely new load.
// Callers must Stop the returned Watcher.
func Watch(pattern string, src *Source, debounce time.Duration, opts Options, onReload func(*Source)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &LoadError{Path: pattern, Op: "watch", Err: err}
	}

	w := &Watcher{
		pattern:         pattern,
		opts:            opts,
		debounce:        debounce,
		onReload:        onReload,
		logger:          opts.Logger,
		fs:              fs,
		watched:         make(map[string]bool, len(src.Paths)),
		lastFingerprint: src.Fingerprint,
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}

	// Watch directories rather than files: editors replace files by
	// rename, which drops inode-level watches.
	dirs := make(map[string]bool)
	for _, p := range src.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		w.watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, &LoadError{Path: dir, Op: "watch", Err: err}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Debug("dataset watch started",
		zap.String("pattern", pattern),
		zap.Int("files", len(src.Paths)),
		zap.Duration("debounce", debounce))
	return w, nil
}

// Stop ends watching and waits for the event goroutine to exit. Safe to
// call once; a reload already in flight completes first.
func (w *Watcher) Stop() {
	w.cancel()
	w.fs.Close()
	w.wg.Wait()
}

// run is the single event goroutine: it owns the debounce timer, the
// reload, and the fingerprint state, so none of them need locking.
func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("dataset change detected",
				zap.String("path", ev.Name),
				zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dataset watch error", zap.Error(err))
		case <-fire:
			w.reload()
		}
	}
}

// relevant filters events down to the files we loaded plus anything
// newly matching the glob pattern.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		abs = ev.Name
	}
	if w.watched[abs] {
		return true
	}
	if ok, err := doublestar.PathMatch(w.pattern, ev.Name); err == nil && ok {
		return true
	}
	return false
}

// reload re-reads the dataset and publishes it unless loading failed or
// the content is byte-identical to the previous load.
func (w *Watcher) reload() {
	src, err := Load(w.pattern, w.opts)
	if err != nil {
		w.logger.Warn("dataset reload failed, keeping previous data", zap.Error(err))
		return
	}
	if src.Fingerprint == w.lastFingerprint {
		w.logger.Debug("dataset content unchanged, skipping reload",
			zap.String("fingerprint", fmt.Sprintf("%016x", src.Fingerprint)))
		return
	}
	w.lastFingerprint = src.Fingerprint
	w.onReload(src)
}
