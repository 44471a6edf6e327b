// Package runner orchestrates the top-level automation workflows: it owns
// session acquisition and release, runs the portal flows, feeds sales
// downloads through the post-download pipeline and the spreadsheet refresh,
// and reports every outcome exactly once.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"portalsync/internal/browser"
	"portalsync/internal/config"
	"portalsync/internal/excel"
	"portalsync/internal/logger"
	"portalsync/internal/notify"
	"portalsync/internal/observability"
	"portalsync/internal/pipeline"
	"portalsync/internal/portal"
)

// Runner executes workflows one at a time. Concurrent requests fail fast
// with browser.ErrSessionBusy via the manager.
type Runner struct {
	Cfg     *config.Config
	Browser *browser.Manager
	Notify  notify.Notifier
	Metrics *observability.Metrics // optional
	Log     *slog.Logger
}

// Export runs the two attribute exports and collects the resulting files
// from the message center.
func (r *Runner) Export(ctx context.Context) (notify.Result, error) {
	return r.run(ctx, notify.WorkflowExport, false, func(ctx context.Context, f *portal.Flow) (string, string, error) {
		files, err := f.RunExport(ctx, r.Cfg.DownloadFolder)
		if err != nil {
			return "", "", err
		}
		if len(files) == 0 {
			return "Export completed; no files were ready to download.", "", nil
		}
		return fmt.Sprintf("Export and download completed (%d files).", len(files)), files[len(files)-1], nil
	})
}

// Import uploads filePath and drives the accept/reject flow. When thenSales
// is set and the import succeeded, a sales download is started after the
// configured delay, giving the resubmitted report time to generate.
func (r *Runner) Import(ctx context.Context, filePath string, thenSales bool) (notify.Result, error) {
	res, err := r.run(ctx, notify.WorkflowImport, false, func(ctx context.Context, f *portal.Flow) (string, string, error) {
		ir, err := f.RunImport(ctx, filePath)
		if err != nil {
			return "", "", err
		}
		if !ir.Success {
			return "", "", &portal.Error{Kind: portal.KindImport, Op: "import", Err: fmt.Errorf("%s", ir.Message)}
		}
		return ir.Message, "", nil
	})
	if err != nil || !res.Success || !thenSales {
		return res, err
	}

	r.Notify.Status(fmt.Sprintf("Import done. Sales download starts in %s.", r.Cfg.Timings.SalesAfterImportWait))
	if err := sleepCtx(ctx, r.Cfg.Timings.SalesAfterImportWait); err != nil {
		return res, err
	}
	return r.SalesDownload(ctx)
}

// SalesDownload polls for the nightly report, downloads it and runs the
// post-download pipeline plus the spreadsheet refresh.
func (r *Runner) SalesDownload(ctx context.Context) (notify.Result, error) {
	return r.run(ctx, notify.WorkflowSales, true, func(ctx context.Context, f *portal.Flow) (string, string, error) {
		archive, err := f.PollSalesReport(ctx, r.Cfg.DownloadFolder)
		if err != nil {
			return "", "", err
		}
		if archive == "" {
			return "Sales report not ready; all polling attempts used.", "", nil
		}

		p := &pipeline.Pipeline{
			Log:            f.Log,
			DownloadDir:    r.Cfg.DownloadFolder,
			DestinationDir: r.Cfg.DestinationFolder,
		}
		artifact, err := p.Run(ctx, archive)
		if err != nil {
			return "", "", err
		}

		refreshMsg, err := excel.Refresh(ctx, r.Cfg.SpreadsheetPath, r.Cfg.UpdaterPath, time.Now())
		if err != nil {
			// The artifact landed; a refresh failure is a partial success.
			return fmt.Sprintf("Report saved to %s, but spreadsheet refresh failed: %v",
				filepath.Base(artifact), err), artifact, nil
		}
		return fmt.Sprintf("Sales report ready at %s. %s", artifact, refreshMsg), artifact, nil
	})
}

// run handles the shared lifecycle: config check before any browser work,
// session acquisition, login, the workflow body, guaranteed session close,
// and exactly one Finished notification.
func (r *Runner) run(ctx context.Context, wf notify.Workflow, maximized bool, body func(context.Context, *portal.Flow) (msg, filePath string, err error)) (notify.Result, error) {
	if err := portal.CheckLoginConfig(r.Cfg); err != nil {
		return r.fail(ctx, wf, err), err
	}

	ctx = logger.WithRunID(ctx, uuid.NewString())
	log := logger.FromContext(ctx, r.Log).With("workflow", string(wf))

	session, err := r.Browser.Acquire(ctx, browser.Options{
		ProfileDir:     r.Cfg.ProfileDir,
		DownloadsDir:   r.Cfg.DownloadFolder,
		Headless:       r.Cfg.Headless,
		ExecutablePath: r.Cfg.BrowserPath,
		AllowBundled:   r.Cfg.BrowserFallback,
		Maximized:      maximized,
	})
	if err != nil {
		return r.fail(ctx, wf, err), err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("session close failed", "error", cerr)
		}
	}()

	flow := &portal.Flow{
		Page:   session.Page(),
		T:      r.Cfg.Timings,
		Log:    log,
		Notify: r.Notify,
	}
	if r.Metrics != nil {
		flow.Attempts = r.Metrics
	}

	if err := flow.Login(ctx, r.Cfg); err != nil {
		return r.fail(ctx, wf, err), nil
	}

	msg, filePath, err := body(ctx, flow)
	if err != nil {
		return r.fail(ctx, wf, err), nil
	}

	res := notify.Result{Workflow: wf, Success: true, Message: msg, FilePath: filePath}
	r.finish(ctx, res)
	return res, nil
}

func (r *Runner) fail(ctx context.Context, wf notify.Workflow, err error) notify.Result {
	r.Notify.Error(err.Error(), errorType(err))
	res := notify.Result{Workflow: wf, Success: false, Message: err.Error()}
	r.finish(ctx, res)
	return res
}

func (r *Runner) finish(ctx context.Context, res notify.Result) {
	if r.Metrics != nil {
		r.Metrics.RecordRun(ctx, string(res.Workflow), res.Success)
	}
	r.Notify.Finished(res)
}

// errorType renders the user-visible error category.
func errorType(err error) string {
	switch {
	case errors.Is(err, browser.ErrSessionBusy):
		return "Session Busy"
	case errors.Is(err, browser.ErrBrowserNotFound):
		return "Browser Not Found"
	}
	return portal.KindOf(err).String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
