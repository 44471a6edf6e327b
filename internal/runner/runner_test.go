package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"portalsync/internal/browser"
	"portalsync/internal/config"
	"portalsync/internal/notify"
	"portalsync/internal/portal"
)

type fakeLauncher struct {
	launches int
}

func (f *fakeLauncher) Launch(ctx context.Context, opts browser.Options) (*browser.Session, error) {
	f.launches++
	return &browser.Session{}, nil
}

type recorder struct {
	statuses   []string
	errorTypes []string
	results    []notify.Result
}

func (r *recorder) Status(msg string)          { r.statuses = append(r.statuses, msg) }
func (r *recorder) Error(msg, errType string)  { r.errorTypes = append(r.errorTypes, errType) }
func (r *recorder) Finished(res notify.Result) { r.results = append(r.results, res) }

func testRunner(cfg *config.Config) (*Runner, *fakeLauncher, *recorder) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fl := &fakeLauncher{}
	rec := &recorder{}
	return &Runner{
		Cfg:     cfg,
		Browser: browser.NewManager(fl, log),
		Notify:  rec,
		Log:     log,
	}, fl, rec
}

func TestExportMissingConfigNeverLaunchesBrowser(t *testing.T) {
	cfg := &config.Config{Timings: config.DefaultTimings()} // no url/username/password
	r, fl, rec := testRunner(cfg)

	res, err := r.Export(context.Background())
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if kind := portal.KindOf(err); kind != portal.KindConfiguration {
		t.Errorf("kind = %v, want KindConfiguration", kind)
	}
	if fl.launches != 0 {
		t.Errorf("browser launched %d times, want 0", fl.launches)
	}
	if res.Success {
		t.Error("result must be a failure")
	}
	if len(rec.errorTypes) != 1 || rec.errorTypes[0] != "Configuration Error" {
		t.Errorf("error notifications = %v", rec.errorTypes)
	}
	if len(rec.results) != 1 {
		t.Errorf("finished notifications = %d, want exactly 1", len(rec.results))
	}
}

func TestWorkflowRejectedWhileSessionOpen(t *testing.T) {
	cfg := &config.Config{
		LoginURL: "https://portal.example.com",
		Username: "u",
		Password: "p",
		Timings:  config.DefaultTimings(),
	}
	r, _, rec := testRunner(cfg)

	// Occupy the single session slot.
	s, err := r.Browser.Acquire(context.Background(), browser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	res, err := r.SalesDownload(context.Background())
	if !errors.Is(err, browser.ErrSessionBusy) {
		t.Fatalf("err = %v, want ErrSessionBusy", err)
	}
	if res.Success {
		t.Error("busy rejection must be a failure result")
	}
	if len(rec.errorTypes) != 1 || rec.errorTypes[0] != "Session Busy" {
		t.Errorf("error notifications = %v", rec.errorTypes)
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"busy", browser.ErrSessionBusy, "Session Busy"},
		{"no browser", browser.ErrBrowserNotFound, "Browser Not Found"},
		{"login", &portal.Error{Kind: portal.KindLogin, Op: "login.submit"}, "Login Error"},
		{"foreign", errors.New("boom"), "Unknown Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorType(tt.err); got != tt.want {
				t.Errorf("errorType = %q, want %q", got, tt.want)
			}
		})
	}
}
