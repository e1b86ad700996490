// Package watch implements the agent mode: a polling directory monitor that
// feeds newly appearing candidate files into the scan workflow.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cybermorph/morphcli/internal/client/scan"
	"github.com/cybermorph/morphcli/internal/logging"
)

// DefaultExtensions are the file types worth submitting. Everything else in
// a watched directory is ignored.
var DefaultExtensions = []string{".exe", ".dll", ".bin", ".scr", ".py", ".js"}

const (
	defaultInterval = 5 * time.Second
	defaultMaxRPS   = 0.5
)

// Submitter is the scan entry point the watcher drives. *scan.Workflow
// satisfies it.
type Submitter interface {
	Submit(ctx context.Context, filename string, content []byte) (*scan.Report, error)
}

// Options configures a Watcher. Zero values fall back to defaults; OnResult
// and OnError may be nil when the caller only wants logs.
type Options struct {
	Dir        string
	Interval   time.Duration
	Extensions []string
	MaxRPS     float64
	OnResult   func(path string, report *scan.Report)
	OnError    func(path string, err error)
}

// Watcher polls a directory and submits each candidate file exactly once per
// process lifetime. It never deletes or moves anything; verdicts are reported
// through the callback and the operator decides what to do.
type Watcher struct {
	dir        string
	interval   time.Duration
	extensions map[string]struct{}
	limiter    *rate.Limiter
	submitter  Submitter
	log        logging.Logger

	onResult func(path string, report *scan.Report)
	onError  func(path string, err error)

	seen map[string]struct{}
}

func NewWatcher(submitter Submitter, log logging.Logger, opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	maxRPS := opts.MaxRPS
	if maxRPS <= 0 {
		maxRPS = defaultMaxRPS
	}
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	return &Watcher{
		dir:        opts.Dir,
		interval:   interval,
		extensions: extSet,
		limiter:    rate.NewLimiter(rate.Limit(maxRPS), 1),
		submitter:  submitter,
		log:        log,
		onResult:   opts.OnResult,
		onError:    opts.OnError,
		seen:       make(map[string]struct{}),
	}
}

// Run polls until the context is canceled. The first sweep happens
// immediately, then once per interval. Only context cancellation ends the
// loop; per-file failures are reported and skipped.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.dir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	w.log.Info(ctx, "watching directory", "dir", w.dir, "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn(ctx, "failed to list watch directory", "dir", w.dir, "error", err)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if _, done := w.seen[path]; done {
			continue
		}
		if !w.candidate(entry.Name()) {
			continue
		}
		// Marked before submission so a failing file cannot be retried in a
		// loop against the backend every sweep.
		w.seen[path] = struct{}{}
		w.process(ctx, path)
	}
}

func (w *Watcher) candidate(name string) bool {
	_, ok := w.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (w *Watcher) process(ctx context.Context, path string) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		w.fail(ctx, path, fmt.Errorf("read file: %w", err))
		return
	}

	report, err := w.submitter.Submit(ctx, filepath.Base(path), content)
	if err != nil {
		w.fail(ctx, path, fmt.Errorf("submit: %w", err))
		return
	}

	w.log.Info(ctx, "file scanned", "path", path, "verdict", report.Verdict, "malicious", report.Malicious)
	if w.onResult != nil {
		w.onResult(path, report)
	}
}

func (w *Watcher) fail(ctx context.Context, path string, err error) {
	w.log.Warn(ctx, "scan failed", "path", path, "error", err)
	if w.onError != nil {
		w.onError(path, err)
	}
}
