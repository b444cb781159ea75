// Package watch reloads the drug corpus when its file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/corpus"
	"github.com/kailas-cloud/drugfacts/internal/domain/drug"
	"github.com/kailas-cloud/drugfacts/internal/metrics"
	"github.com/kailas-cloud/drugfacts/internal/usecase/retrieve"
)

const defaultDebounce = 250 * time.Millisecond

// Target receives freshly built snapshots.
type Target interface {
	Snapshot() *retrieve.Snapshot
	Swap(snap *retrieve.Snapshot) *retrieve.Snapshot
}

// LoadFunc reads the corpus file.
type LoadFunc func(path string) ([]drug.Record, error)

// Watcher observes the corpus file's directory and swaps in a rebuilt
// snapshot after each burst of changes. A failed reload leaves the current
// snapshot serving.
type Watcher struct {
	path     string
	debounce time.Duration
	load     LoadFunc
	target   Target
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
}

// New starts watching the directory holding path. The directory is watched
// rather than the file so atomic rename-over saves are observed.
func New(path string, debounce time.Duration, target Target, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve corpus path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		load:     corpus.Load,
		target:   target,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Run processes file events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Info("Watching corpus for changes", zap.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("corpus watcher error", zap.Error(err))
		case <-timer.C:
			if err := w.Reload(); err != nil {
				w.logger.Error("Corpus reload failed, keeping current snapshot", zap.Error(err))
			}
		}
	}
}

// Reload loads the corpus file, rebuilds the index and swaps it in.
// An unchanged corpus is not swapped.
func (w *Watcher) Reload() error {
	records, err := w.load(w.path)
	if err != nil {
		metrics.CorpusReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("reload corpus: %w", err)
	}

	snap := retrieve.NewSnapshot(records)
	if cur := w.target.Snapshot(); cur != nil && cur.Fingerprint() == snap.Fingerprint() {
		metrics.CorpusReloadsTotal.WithLabelValues("unchanged").Inc()
		return nil
	}

	old := w.target.Swap(snap)
	metrics.CorpusReloadsTotal.WithLabelValues("success").Inc()

	prev := 0
	if old != nil {
		prev = old.Len()
	}
	w.logger.Info("Corpus reloaded",
		zap.Int("documents", snap.Len()),
		zap.Int("previous_documents", prev),
		zap.String("fingerprint", snap.Fingerprint()),
	)
	return nil
}

// relevant reports whether ev may have changed the corpus file contents.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename)
}
