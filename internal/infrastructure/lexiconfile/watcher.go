// Package lexiconfile loads the classifier lexicon from YAML and reloads it when
// the file changes.
package lexiconfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
)

const defaultDebounce = 500 * time.Millisecond

// Load reads and validates a lexicon file.
func Load(path string) (analysis.Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis.Lexicon{}, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	lex, err := analysis.ParseLexicon(data)
	if err != nil {
		return analysis.Lexicon{}, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Target receives reloaded lexicons. *analysis.LexicalClassifier satisfies it.
type Target interface {
	SetLexicon(analysis.Lexicon) error
}

// Watcher reloads a lexicon file into a Target after it changes. The parent
// directory is watched so editors that save by rename are picked up.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	target   Target
	logger   *zap.Logger
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	reloads  atomic.Int64
	failures atomic.Int64
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

func NewWatcher(path string, target Target, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		target:   target,
		logger:   zap.NewNop(),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(ctx)
	w.logger.Info("watching lexicon file", zap.String("path", w.path))
	return nil
}

// Stop ends the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	fw := w.watcher
	w.mu.Unlock()

	<-done
	if err := fw.Close(); err != nil {
		w.logger.Warn("closing lexicon watcher", zap.Error(err))
	}
}

// Reload loads the file and hands it to the target. A failed reload keeps
// the previous lexicon active.
func (w *Watcher) Reload() error {
	lex, err := Load(w.path)
	if err == nil {
		err = w.target.SetLexicon(lex)
	}
	if err != nil {
		w.failures.Add(1)
		w.logger.Warn("lexicon reload failed, keeping previous lexicon", zap.String("path", w.path), zap.Error(err))
		return err
	}
	w.reloads.Add(1)
	w.logger.Info("lexicon reloaded",
		zap.String("path", w.path),
		zap.String("version", lex.Version),
		zap.Int("positive", len(lex.Positive)),
		zap.Int("negative", len(lex.Negative)),
	)
	return nil
}

// Reloads returns the number of successful reloads.
func (w *Watcher) Reloads() int64 { return w.reloads.Load() }

// Failures returns the number of rejected reloads.
func (w *Watcher) Failures() int64 { return w.failures.Load() }

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			// Rapid saves collapse into a single reload.
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("lexicon watcher error", zap.Error(err))
		case <-timer.C:
			_ = w.Reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
