// Package scan drives a file through the submission state machine
// (idle, uploading, analyzing, complete) with a local progress estimator,
// legacy-endpoint fallback and verdict classification.
package scan

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/cybermorph/morphcli/internal/client/api"
	"github.com/cybermorph/morphcli/internal/client/models"
	"github.com/cybermorph/morphcli/internal/common"
	"github.com/cybermorph/morphcli/internal/logging"
)

// Phase is the workflow's current stage. Progress is orthogonal: a number in
// [0,100] that only the estimator and the terminal transitions move.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhaseAnalyzing Phase = "analyzing"
	PhaseComplete  Phase = "complete"
)

// ErrScanInFlight rejects a second submission (or a reset) while a scan is
// still running. Queueing would let two estimators fight over progress.
var ErrScanInFlight = errors.New("scan already in progress")

// Estimator tuning. Progress is a UX approximation, not a measurement: it
// must never reach 100 before the response is known.
const (
	defaultTickInterval  = 200 * time.Millisecond
	defaultMaxStep       = 15.0
	maxEstimatedProgress = 90.0
)

// Uploader is the transport slice the workflow needs. *api.Client satisfies
// it; tests substitute fakes.
type Uploader interface {
	Upload(ctx context.Context, path, filename string, content []byte) (*models.ScanResponse, error)
}

// Workflow runs one scan at a time. The phase variable is the only
// coordination point between the network task and the progress estimator:
// the estimator reads it before every tick and self-cancels once it leaves
// the in-flight phases, and only the network task writes terminal phases.
type Workflow struct {
	uploader Uploader
	log      logging.Logger

	tick    time.Duration
	maxStep float64

	mu       sync.Mutex
	phase    Phase
	progress float64
	report   *Report
}

func NewWorkflow(uploader Uploader, log logging.Logger) *Workflow {
	return &Workflow{
		uploader: uploader,
		log:      log,
		tick:     defaultTickInterval,
		maxStep:  defaultMaxStep,
		phase:    PhaseIdle,
	}
}

// Submit uploads the file and blocks until a verdict or a terminal failure.
//
// Validation failures (empty filename or content) are rejected before any
// state change or network call. A submission while another is in flight is
// rejected, never queued. On success the report is retained until the next
// Submit or Reset.
func (w *Workflow) Submit(ctx context.Context, filename string, content []byte) (*Report, error) {
	if filename == "" || len(content) == 0 {
		return nil, common.ErrNoFileSelected
	}

	w.mu.Lock()
	if w.phase != PhaseIdle && w.phase != PhaseComplete {
		w.mu.Unlock()
		return nil, ErrScanInFlight
	}
	w.phase = PhaseUploading
	w.progress = 0
	w.report = nil
	w.mu.Unlock()

	stop := make(chan struct{})
	var stopOnce sync.Once
	stopEstimator := func() { stopOnce.Do(func() { close(stop) }) }
	go w.runEstimator(stop)

	// The request is on its way; everything from here on is server time.
	w.setPhase(PhaseAnalyzing)

	resp, err := w.resolveUpload(ctx, filename, content)
	stopEstimator()

	if err != nil {
		w.mu.Lock()
		w.phase = PhaseIdle
		w.progress = 0
		w.mu.Unlock()
		return nil, err
	}

	report := Classify(resp)

	w.mu.Lock()
	w.progress = 100
	w.phase = PhaseComplete
	w.report = &report
	w.mu.Unlock()

	w.log.Info(ctx, "scan complete",
		"file", filename, "verdict", report.Verdict, "malicious", report.Malicious)
	return &report, nil
}

// resolveUpload tries the primary endpoint and, only on a 404, retries the
// legacy endpoint once with the identical payload. Any other failure is
// terminal, as is a second 404.
func (w *Workflow) resolveUpload(ctx context.Context, filename string, content []byte) (*models.ScanResponse, error) {
	resp, err := w.uploader.Upload(ctx, api.PathScanUpload, filename, content)
	if err == nil {
		return resp, nil
	}
	if !api.IsStatus(err, http.StatusNotFound) {
		return nil, err
	}
	w.log.Info(ctx, "primary upload endpoint not found, retrying legacy endpoint",
		"fallback", api.PathScanUploadLegacy)
	return w.uploader.Upload(ctx, api.PathScanUploadLegacy, filename, content)
}

// runEstimator advances progress by a bounded random increment per tick while
// the scan is in flight, capped below the point that would read as "done".
// It exits on the stop signal or as soon as the phase goes terminal.
func (w *Workflow) runEstimator(stop <-chan struct{}) {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.mu.Lock()
			if w.phase != PhaseUploading && w.phase != PhaseAnalyzing {
				w.mu.Unlock()
				return
			}
			next := w.progress + rand.Float64()*w.maxStep
			if next > maxEstimatedProgress {
				next = maxEstimatedProgress
			}
			w.progress = next
			w.mu.Unlock()
		}
	}
}

// Reset returns the workflow to idle, clearing progress and the last report.
// It is rejected mid-flight; cancel the submission's context first.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseUploading || w.phase == PhaseAnalyzing {
		return ErrScanInFlight
	}
	w.phase = PhaseIdle
	w.progress = 0
	w.report = nil
	return nil
}

// Phase returns the current stage.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Progress returns the current completion estimate in [0,100].
func (w *Workflow) Progress() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

// Report returns the last completed scan's report, if any.
func (w *Workflow) Report() (Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.report == nil {
		return Report{}, false
	}
	return *w.report, true
}

func (w *Workflow) setPhase(p Phase) {
	w.mu.Lock()
	w.phase = p
	w.mu.Unlock()
}
