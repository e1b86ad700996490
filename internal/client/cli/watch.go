package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cybermorph/morphcli/internal/client/scan"
	"github.com/cybermorph/morphcli/internal/client/watch"
)

// Watch runs the agent mode against a directory: every new candidate file is
// submitted through the scan workflow and the verdict printed. The watch runs
// until the user presses Enter.
func (a *App) Watch(ctx context.Context, dir string) error {
	submitter, ok := a.scans.(watch.Submitter)
	if !ok {
		fmt.Fprintln(a.out, "Watching is not available")
		return nil
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		fmt.Fprintf(a.out, "Not a directory: %s\n", dir)
		return fmt.Errorf("watch target %s is not a directory", dir)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := watch.NewWatcher(submitter, a.log, watch.Options{
		Dir:      dir,
		Interval: a.config.WatchInterval,
		OnResult: func(path string, report *scan.Report) {
			if report.Malicious {
				fmt.Fprintf(a.out, "THREAT: %s (%s)\n", path, report.Verdict)
			} else {
				fmt.Fprintf(a.out, "scanned: %s (%s)\n", path, report.Verdict)
			}
		},
		OnError: func(path string, err error) {
			fmt.Fprintf(a.out, "failed: %s (%s)\n", path, err.Error())
		},
	})

	errCh := make(chan error, 1)
	go func() { errCh <- watcher.Run(watchCtx) }()

	fmt.Fprintf(a.out, "Watching %s (press Enter to stop)\n", dir)

	lineCh := make(chan struct{})
	go func() {
		_, _ = a.reader.ReadString('\n')
		close(lineCh)
	}()

	select {
	case <-lineCh:
		cancel()
		<-errCh
		fmt.Fprintln(a.out, "Stopped watching")
		return nil
	case err := <-errCh:
		if watchCtx.Err() == nil {
			fmt.Fprintf(a.out, "Watch failed: %s\n", err.Error())
			return err
		}
		return nil
	}
}
