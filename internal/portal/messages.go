package portal

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DownloadNewExports waits for the two "export ready" notifications to reach
// the inbox, opens the message center and downloads every message link found
// (at most two). When the inbox never reaches the expected count but links
// exist anyway, the links win; a timeout with zero links is an error, and
// zero links without a timeout just means nothing arrived yet.
func (f *Flow) DownloadNewExports(ctx context.Context, downloadDir string) ([]string, error) {
	// Give the portal a moment to enqueue the notifications.
	if err := sleep(ctx, f.T.MessageSettle); err != nil {
		return nil, err
	}

	f.status("Waiting for export notifications...")
	inboxErr := f.waitForInboxIncrease(ctx, 2)
	if inboxErr != nil {
		f.Log.Warn("inbox wait expired, checking message center anyway", "error", inboxErr)
	}

	if err := f.click(KindExport, "messages.open", selInboxButton); err != nil {
		return nil, err
	}
	if err := f.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(f.T.LoginNavTimeout),
	}); err != nil {
		return nil, wrap(KindExport, "messages.load", err)
	}
	// The message list renders stale on first open; a refresh brings in the
	// new notifications.
	if err := f.reloadAndSettle(ctx, KindExport, "messages.refresh", f.T.MessageSettle); err != nil {
		return nil, err
	}

	frame := f.Page.FrameLocator(selMessagesFrame)
	links := frame.Locator(selMessageLink)

	// An empty inbox renders no links at all, so a miss here is informative,
	// not fatal.
	_ = links.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(f.T.SelectorTimeout),
	})

	count, err := links.Count()
	if err != nil {
		return nil, wrap(KindExport, "messages.count", err)
	}
	if count == 0 {
		if inboxErr != nil {
			return nil, inboxErr
		}
		f.status("No new messages found.")
		return nil, nil
	}
	if count > 2 {
		count = 2
	}

	var saved []string
	for i := 0; i < count; i++ {
		if err := links.Nth(i).Click(playwright.LocatorClickOptions{Timeout: ms(f.T.SelectorTimeout)}); err != nil {
			return saved, wrap(KindExport, "messages.open-message", err)
		}
		path, err := f.downloadFromMessage(frame, downloadDir)
		if err != nil {
			return saved, err
		}
		f.status("Downloaded " + filepath.Base(path))
		saved = append(saved, path)
		if err := sleep(ctx, f.T.MessageClickSettle); err != nil {
			return saved, err
		}
	}

	// Back to the workspace; navigation failure here does not void the
	// downloads that already landed.
	if err := f.click(KindExport, "messages.workspace", selMyWorkspace); err != nil {
		f.Log.Warn("could not return to workspace", "error", err)
	}
	return saved, nil
}

// downloadFromMessage runs the single-file download routine: await the
// download event scoped to the message frame, save under the suggested name,
// close the confirmation modal.
func (f *Flow) downloadFromMessage(frame playwright.FrameLocator, downloadDir string) (string, error) {
	dl, err := f.Page.ExpectDownload(func() error {
		return frame.Locator(selMessageDL).First().Click(playwright.LocatorClickOptions{
			Timeout: ms(f.T.SelectorTimeout),
		})
	}, playwright.PageExpectDownloadOptions{Timeout: ms(f.T.DownloadTimeout)})
	if err != nil {
		return "", wrap(KindDownloadTimeout, "messages.download", err)
	}

	dest := filepath.Join(downloadDir, dl.SuggestedFilename())
	if err := dl.SaveAs(dest); err != nil {
		return "", wrap(KindFileSystem, "messages.save", err)
	}

	closeBtn := frame.Locator(selMessageModalX)
	if err := closeBtn.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(f.T.ModalTimeout),
	}); err != nil {
		return dest, wrap(KindExport, "messages.close-modal", err)
	}
	if err := closeBtn.Click(); err != nil {
		return dest, wrap(KindExport, "messages.close-modal", err)
	}
	return dest, nil
}

// waitForInboxIncrease polls the inbox counter until it grows by increaseBy,
// reloading the page between polls.
func (f *Flow) waitForInboxIncrease(ctx context.Context, increaseBy int) error {
	baseline := f.inboxCount()
	target := baseline + increaseBy
	f.Log.Info("waiting for inbox growth", "baseline", baseline, "target", target)

	deadline := time.Now().Add(f.T.InboxWait)
	for time.Now().Before(deadline) {
		if _, err := f.Page.Reload(playwright.PageReloadOptions{
			WaitUntil: playwright.WaitUntilStateNetworkidle,
		}); err != nil {
			return wrap(KindNavigation, "messages.inbox-reload", err)
		}
		if err := sleep(ctx, f.T.InboxReloadSettle); err != nil {
			return err
		}

		if current := f.inboxCount(); current >= target {
			f.Log.Info("inbox reached target", "count", current)
			return nil
		}
		if err := sleep(ctx, f.T.InboxPollInterval); err != nil {
			return err
		}
	}
	return wrap(KindDownloadTimeout, "messages.inbox-wait",
		fmt.Errorf("inbox did not grow by %d within %s", increaseBy, f.T.InboxWait))
}

// inboxCount reads the counter badge; anything unreadable counts as zero.
func (f *Flow) inboxCount() int {
	attr, err := f.Page.Locator(selInboxCounter).GetAttribute("data-count")
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(attr))
	if err != nil {
		return 0
	}
	return n
}
