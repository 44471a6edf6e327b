package portal

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PollSalesReport waits for the nightly store-level report job to complete
// and downloads its archive. The outer loop is bounded by attempt count, not
// wall clock: up to MaxDownloadAttempts polls separated by CheckInterval, so
// a run can legitimately span hours. An empty path with a nil error means
// the report never became ready this cycle, which callers treat differently
// from a failure.
func (f *Flow) PollSalesReport(ctx context.Context, downloadDir string) (string, error) {
	if err := f.expandReportTree(ctx); err != nil {
		return "", err
	}
	if err := f.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return "", wrap(KindNavigation, "sales.settle", err)
	}

	return pollUntilDownloaded(ctx, f.T.MaxDownloadAttempts, f.T.CheckInterval, f.Log,
		func(ctx context.Context) (string, error) {
			return f.attemptSalesDownload(ctx, downloadDir)
		})
}

// pollUntilDownloaded runs attempt up to maxAttempts times with interval
// between tries. Retryable errors count as a miss; anything else aborts.
// Exhaustion is not an error: it returns "" so the caller can report
// "not ready" rather than a failure.
func pollUntilDownloaded(ctx context.Context, maxAttempts int, interval time.Duration, log *slog.Logger, attempt func(context.Context) (string, error)) (string, error) {
	for i := 1; i <= maxAttempts; i++ {
		log.Info("checking report availability", "attempt", i, "max_attempts", maxAttempts)

		path, err := attempt(ctx)
		if err != nil {
			if !Retryable(err) {
				return "", err
			}
			log.Warn("retryable error while polling", "attempt", i, "error", err)
		} else if path != "" {
			return path, nil
		}

		if i < maxAttempts {
			log.Info("report not ready, sleeping", "interval", interval)
			if err := sleep(ctx, interval); err != nil {
				return "", err
			}
		}
	}
	log.Warn("report never became ready", "max_attempts", maxAttempts)
	return "", nil
}

// attemptSalesDownload reads the first job row; when its status tooltip says
// the job completed, it runs the popup download routine. A not-yet-complete
// status returns "" with no error.
func (f *Flow) attemptSalesDownload(ctx context.Context, downloadDir string) (string, error) {
	row := f.Page.Locator(selStatusRows).Nth(0)

	id, err := row.Locator("td").Nth(1).InnerText()
	if err != nil {
		return "", wrap(KindNavigation, "sales.job-id", err)
	}
	jobName := "job" + strings.TrimSpace(id)

	tooltip, err := row.Locator(selStatusIcon).GetAttribute("uib-tooltip")
	if err != nil {
		return "", wrap(KindNavigation, "sales.status", err)
	}
	f.Log.Info("job status", "job", jobName, "tooltip", tooltip)

	if !strings.HasPrefix(strings.ToUpper(tooltip), "COMPLETE") {
		return "", nil
	}

	link := row.Locator("td").Nth(4).Locator(selReportFileLink)
	return f.downloadViaPopup(ctx, link, jobName, downloadDir)
}

// downloadViaPopup clicks the report link, waits for the download tab and
// its download event, and saves the file under the job-derived name. A stuck
// popup is a transient UI glitch, so this retries fast and often; exhausting
// the budget returns "" rather than an error so the slow outer loop decides
// what to do next.
func (f *Flow) downloadViaPopup(ctx context.Context, link playwright.Locator, jobName, downloadDir string) (string, error) {
	for attempt := 1; attempt <= f.T.MaxPopupAttempts; attempt++ {
		f.Log.Info("download attempt", "attempt", attempt, "max_attempts", f.T.MaxPopupAttempts)
		if f.Attempts != nil {
			f.Attempts.RecordDownloadAttempt(ctx)
		}

		path, err := f.popupDownloadOnce(link, jobName, downloadDir)
		if err == nil {
			return path, nil
		}
		f.Log.Warn("download attempt failed", "attempt", attempt, "error", err)

		if attempt < f.T.MaxPopupAttempts {
			if serr := sleep(ctx, f.T.PopupRetryDelay); serr != nil {
				return "", serr
			}
		}
	}
	f.Log.Warn("all download attempts failed", "job", jobName)
	return "", nil
}

func (f *Flow) popupDownloadOnce(link playwright.Locator, jobName, downloadDir string) (string, error) {
	popup, err := f.Page.ExpectPopup(func() error {
		return link.Click(playwright.LocatorClickOptions{Timeout: ms(f.T.SelectorTimeout)})
	}, playwright.PageExpectPopupOptions{Timeout: ms(f.T.PopupTimeout)})
	if err != nil {
		return "", wrap(KindDownloadTimeout, "sales.popup", err)
	}
	defer func() {
		if popup != nil && !popup.IsClosed() {
			_ = popup.Close()
		}
	}()

	dl, err := popup.ExpectDownload(func() error { return nil },
		playwright.PageExpectDownloadOptions{Timeout: ms(f.T.DownloadTimeout)})
	if err != nil {
		return "", wrap(KindDownloadTimeout, "sales.download", err)
	}
	_ = popup.Close()

	ext := filepath.Ext(dl.SuggestedFilename())
	if ext == "" {
		ext = ".zip"
	}
	dest := filepath.Join(downloadDir, jobName+ext)
	if err := dl.SaveAs(dest); err != nil {
		return "", wrap(KindFileSystem, "sales.save", err)
	}
	f.status(fmt.Sprintf("Downloaded %s", filepath.Base(dest)))
	return dest, nil
}
