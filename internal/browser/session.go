// Package browser owns the lifetime of the single Chrome session the
// automation runs in. The session uses a persistent profile directory so SSO
// cookies survive across runs, and a weighted semaphore guarantees at most
// one live session at a time.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrSessionBusy is returned when a session is already active.
	ErrSessionBusy = errors.New("browser session already active")
	// ErrBrowserNotFound is returned when no system Chrome exists and the
	// bundled-browser fallback is disabled.
	ErrBrowserNotFound = errors.New("no usable chrome executable found")
)

// Options control how a session is launched.
type Options struct {
	ProfileDir     string
	DownloadsDir   string
	Headless       bool
	ExecutablePath string // explicit chrome binary; probed when empty
	AllowBundled   bool   // fall back to playwright's bundled chromium
	Maximized      bool
}

// Session is one live browser context plus its initial page.
type Session struct {
	pw   *playwright.Playwright
	bctx playwright.BrowserContext
	page playwright.Page

	release   func()
	closeOnce sync.Once
}

func (s *Session) Page() playwright.Page              { return s.page }
func (s *Session) Context() playwright.BrowserContext { return s.bctx }

// Close tears down the context and the playwright driver, then releases the
// session slot. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.bctx != nil {
			err = s.bctx.Close()
		}
		if s.pw != nil {
			if serr := s.pw.Stop(); serr != nil && err == nil {
				err = serr
			}
		}
		if s.release != nil {
			s.release()
		}
	})
	return err
}

// Launcher starts browser sessions. It is an interface so tests can run the
// manager without a real browser.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (*Session, error)
}

// Manager enforces the one-session-at-a-time invariant on top of a Launcher.
type Manager struct {
	sem      *semaphore.Weighted
	launcher Launcher
	log      *slog.Logger
}

func NewManager(launcher Launcher, log *slog.Logger) *Manager {
	return &Manager{
		sem:      semaphore.NewWeighted(1),
		launcher: launcher,
		log:      log,
	}
}

// Acquire launches a session if none is active, otherwise fails fast with
// ErrSessionBusy. The slot is released when the returned session is closed.
func (m *Manager) Acquire(ctx context.Context, opts Options) (*Session, error) {
	if !m.sem.TryAcquire(1) {
		return nil, ErrSessionBusy
	}

	s, err := m.launcher.Launch(ctx, opts)
	if err != nil {
		m.sem.Release(1)
		return nil, err
	}

	prev := s.release
	s.release = func() {
		if prev != nil {
			prev()
		}
		m.sem.Release(1)
	}
	m.log.Info("browser session acquired", "profile_dir", opts.ProfileDir, "headless", opts.Headless)
	return s, nil
}

// PlaywrightLauncher starts real Chrome sessions through playwright.
type PlaywrightLauncher struct {
	Log *slog.Logger
}

func (l *PlaywrightLauncher) Launch(ctx context.Context, opts Options) (*Session, error) {
	exe := FindChrome(opts.ExecutablePath)
	if exe == "" && !opts.AllowBundled {
		return nil, ErrBrowserNotFound
	}
	if exe == "" {
		l.Log.Warn("system chrome not found, using bundled chromium")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install bundled chromium: %w", err)
		}
	}

	if opts.ProfileDir != "" {
		if err := os.MkdirAll(opts.ProfileDir, 0o755); err != nil {
			return nil, fmt.Errorf("create profile dir: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright driver: %w", err)
	}

	// The portal embeds cross-origin frames that Chrome's default isolation
	// blocks automation from reaching.
	args := []string{
		"--disable-web-security",
		"--disable-features=IsolateOrigins,site-per-process",
	}
	if opts.Maximized {
		args = append(args, "--start-maximized")
	}

	ctxOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:        playwright.Bool(opts.Headless),
		Args:            args,
		AcceptDownloads: playwright.Bool(true),
	}
	if exe != "" {
		ctxOpts.ExecutablePath = playwright.String(exe)
	}
	if opts.DownloadsDir != "" {
		ctxOpts.DownloadsPath = playwright.String(opts.DownloadsDir)
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(opts.ProfileDir, ctxOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch persistent context: %w", err)
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("open page: %w", err)
		}
	}

	return &Session{pw: pw, bctx: bctx, page: page}, nil
}
