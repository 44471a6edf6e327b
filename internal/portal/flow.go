// Package portal drives the vendor's web UI: login, attribute export and
// import, message-center downloads and the long-horizon sales-report poll.
// Each workflow takes a live page and is strictly sequential; the only
// intentional race is the click-then-await pattern around download and popup
// events.
package portal

import (
	"context"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"portalsync/internal/config"
	"portalsync/internal/notify"
)

// AttemptRecorder counts report download attempts. A nil recorder disables
// recording.
type AttemptRecorder interface {
	RecordDownloadAttempt(ctx context.Context)
}

// Flow binds one authenticated page to the workflow methods. A Flow is
// created per run and not shared across goroutines.
type Flow struct {
	Page     playwright.Page
	T        config.Timings
	Log      *slog.Logger
	Notify   notify.Notifier
	Attempts AttemptRecorder
}

func (f *Flow) status(msg string) {
	f.Log.Info(msg)
	if f.Notify != nil {
		f.Notify.Status(msg)
	}
}

// ms converts a duration to the millisecond float the driver options take.
func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// sleep pauses for d unless the context ends first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// reloadAndSettle refreshes the page and pauses for d so the rebuilt view can
// render before the next step reads it.
func (f *Flow) reloadAndSettle(ctx context.Context, kind Kind, op string, d time.Duration) error {
	if _, err := f.Page.Reload(); err != nil {
		return wrap(kind, op, err)
	}
	return sleep(ctx, d)
}

// click clicks the first element matching selector, waiting up to the
// generic selector timeout for it to become actionable.
func (f *Flow) click(kind Kind, op, selector string) error {
	err := f.Page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: ms(f.T.SelectorTimeout),
	})
	if err != nil {
		return wrap(kind, op, err)
	}
	return nil
}

// waitVisible blocks until the first match for selector is visible.
func (f *Flow) waitVisible(kind Kind, op, selector string, timeout time.Duration) error {
	err := f.Page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	if err != nil {
		return wrap(kind, op, err)
	}
	return nil
}
