package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"portalsync/internal/config"
)

// fakePage stubs only the driver calls these tests exercise; anything else
// panics through the embedded nil interface.
type fakePage struct {
	playwright.Page
	reloads   int
	reloadErr error
	popups    int
}

func (p *fakePage) Reload(options ...playwright.PageReloadOptions) (playwright.Response, error) {
	p.reloads++
	return nil, p.reloadErr
}

func (p *fakePage) ExpectPopup(cb func() error, options ...playwright.PageExpectPopupOptions) (playwright.Page, error) {
	p.popups++
	return nil, errors.New("popup blocked")
}

type countingRecorder struct {
	attempts int
}

func (c *countingRecorder) RecordDownloadAttempt(ctx context.Context) { c.attempts++ }

func TestReloadAndSettleReloadsOnce(t *testing.T) {
	page := &fakePage{}
	f := &Flow{Page: page, Log: discardLog()}

	if err := f.reloadAndSettle(context.Background(), KindImport, "import.refresh", time.Millisecond); err != nil {
		t.Fatalf("reloadAndSettle: %v", err)
	}
	if page.reloads != 1 {
		t.Errorf("reloads = %d, want 1", page.reloads)
	}
}

func TestReloadAndSettleWrapsDriverError(t *testing.T) {
	page := &fakePage{reloadErr: errors.New("net down")}
	f := &Flow{Page: page, Log: discardLog()}

	err := f.reloadAndSettle(context.Background(), KindImport, "import.refresh", time.Millisecond)
	if err == nil {
		t.Fatal("expected an error when the reload fails")
	}
	if got := KindOf(err); got != KindImport {
		t.Errorf("kind = %v, want %v", got, KindImport)
	}
}

func TestDownloadViaPopupRecordsEveryAttempt(t *testing.T) {
	page := &fakePage{}
	rec := &countingRecorder{}
	f := &Flow{
		Page: page,
		T: config.Timings{
			MaxPopupAttempts: 3,
			PopupRetryDelay:  time.Millisecond,
			SelectorTimeout:  time.Millisecond,
			PopupTimeout:     time.Millisecond,
			DownloadTimeout:  time.Millisecond,
		},
		Log:      discardLog(),
		Attempts: rec,
	}

	path, err := f.downloadViaPopup(context.Background(), nil, "job42", t.TempDir())
	if err != nil {
		t.Fatalf("exhausted retries must not be an error, got %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if page.popups != 3 {
		t.Errorf("popup attempts = %d, want 3", page.popups)
	}
	if rec.attempts != 3 {
		t.Errorf("recorded attempts = %d, want 3", rec.attempts)
	}
}

func TestDownloadViaPopupWithoutRecorder(t *testing.T) {
	page := &fakePage{}
	f := &Flow{
		Page: page,
		T: config.Timings{
			MaxPopupAttempts: 2,
			PopupRetryDelay:  time.Millisecond,
			SelectorTimeout:  time.Millisecond,
			PopupTimeout:     time.Millisecond,
		},
		Log: discardLog(),
	}

	if _, err := f.downloadViaPopup(context.Background(), nil, "job7", t.TempDir()); err != nil {
		t.Fatalf("downloadViaPopup: %v", err)
	}
	if page.popups != 2 {
		t.Errorf("popup attempts = %d, want 2", page.popups)
	}
}
