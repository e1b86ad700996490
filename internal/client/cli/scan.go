package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cybermorph/morphcli/internal/client/scan"
)

// Scan submits one file and blocks until the verdict, showing the estimated
// progress while the scan is in flight.
func (a *App) Scan(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot read %s: %s\n", path, err.Error())
		return err
	}

	stopProgress := make(chan struct{})
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopProgress:
				return
			case <-ticker.C:
				fmt.Fprintf(a.out, "  %s... %.0f%%\n", a.scans.Phase(), a.scans.Progress())
			}
		}
	}()

	report, err := a.scans.Submit(ctx, filepath.Base(path), content)
	close(stopProgress)
	<-progressDone

	if err != nil {
		fmt.Fprintf(a.out, "Scan failed: %s\n", err.Error())
		return err
	}

	a.printReport(report)
	return nil
}

func (a *App) printReport(report *scan.Report) {
	switch {
	case report.Malicious:
		fmt.Fprintf(a.out, "THREAT DETECTED: %s, verdict %q", report.Filename, report.Verdict)
	case report.Clean:
		fmt.Fprintf(a.out, "Clean: %s, verdict %q", report.Filename, report.Verdict)
	default:
		fmt.Fprintf(a.out, "Inconclusive: %s, verdict %q", report.Filename, report.Verdict)
	}
	if report.Score != nil {
		fmt.Fprintf(a.out, ", score %.2f", *report.Score)
	}
	fmt.Fprintln(a.out)
}
