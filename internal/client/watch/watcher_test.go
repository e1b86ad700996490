package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybermorph/morphcli/internal/client/scan"
	"github.com/cybermorph/morphcli/internal/logging"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	files map[string]int
	err   error
}

func (f *fakeSubmitter) Submit(ctx context.Context, filename string, content []byte) (*scan.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		f.files = make(map[string]int)
	}
	f.files[filename]++
	if f.err != nil {
		return nil, f.err
	}
	return &scan.Report{Filename: filename, Verdict: "clean", Clean: true}, nil
}

func (f *fakeSubmitter) submissions() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.files))
	for k, v := range f.files {
		out[k] = v
	}
	return out
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0o600))
	return path
}

func runWatcher(t *testing.T, w *Watcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRun_SubmitsCandidateFilesOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dropper.exe")
	writeFile(t, dir, "payload.bin")
	writeFile(t, dir, "notes.txt") // not a candidate

	submitter := &fakeSubmitter{}
	var mu sync.Mutex
	var results []string
	w := NewWatcher(submitter, discardLogger(), Options{
		Dir:      dir,
		Interval: 10 * time.Millisecond,
		MaxRPS:   1000,
		OnResult: func(path string, report *scan.Report) {
			mu.Lock()
			results = append(results, filepath.Base(path))
			mu.Unlock()
		},
	})

	runWatcher(t, w)

	waitFor(t, func() bool { return len(submitter.submissions()) == 2 })

	// Let several more sweeps pass; nothing may be resubmitted.
	time.Sleep(60 * time.Millisecond)

	got := submitter.submissions()
	assert.Equal(t, map[string]int{"dropper.exe": 1, "payload.bin": 1}, got)

	mu.Lock()
	assert.Len(t, results, 2)
	mu.Unlock()
}

func TestRun_PicksUpFilesAddedLater(t *testing.T) {
	dir := t.TempDir()
	submitter := &fakeSubmitter{}
	w := NewWatcher(submitter, discardLogger(), Options{
		Dir:      dir,
		Interval: 10 * time.Millisecond,
		MaxRPS:   1000,
	})

	runWatcher(t, w)

	time.Sleep(30 * time.Millisecond)
	writeFile(t, dir, "late.scr")

	waitFor(t, func() bool { return submitter.submissions()["late.scr"] == 1 })
}

func TestRun_FailedSubmissionIsNotRetried(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.dll")

	submitter := &fakeSubmitter{err: errors.New("backend down")}
	var mu sync.Mutex
	var failures []string
	w := NewWatcher(submitter, discardLogger(), Options{
		Dir:      dir,
		Interval: 10 * time.Millisecond,
		MaxRPS:   1000,
		OnError: func(path string, err error) {
			mu.Lock()
			failures = append(failures, filepath.Base(path))
			mu.Unlock()
		},
	})

	runWatcher(t, w)

	waitFor(t, func() bool { return submitter.submissions()["broken.dll"] >= 1 })
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 1, submitter.submissions()["broken.dll"])
	mu.Lock()
	assert.Equal(t, []string{"broken.dll"}, failures)
	mu.Unlock()
}

func TestRun_ExtensionFilterIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "LOADER.EXE")
	writeFile(t, dir, "script.JS")
	writeFile(t, dir, "image.png")

	submitter := &fakeSubmitter{}
	w := NewWatcher(submitter, discardLogger(), Options{
		Dir:      dir,
		Interval: 10 * time.Millisecond,
		MaxRPS:   1000,
	})

	runWatcher(t, w)

	waitFor(t, func() bool { return len(submitter.submissions()) == 2 })
	got := submitter.submissions()
	assert.Contains(t, got, "LOADER.EXE")
	assert.Contains(t, got, "script.JS")
	assert.NotContains(t, got, "image.png")
}

func TestRun_MissingDirectoryFailsFast(t *testing.T) {
	w := NewWatcher(&fakeSubmitter{}, discardLogger(), Options{Dir: "/nonexistent/path"})
	err := w.Run(context.Background())
	require.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(&fakeSubmitter{}, discardLogger(), Options{Dir: dir, Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
