package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"portalsync/internal/notify"
	"portalsync/internal/settings"
	"portalsync/pkg/api"
)

type fakeRunner struct {
	exports int
	imports int
	sales   int

	importPath string
	thenSales  bool

	block chan struct{} // when set, workflows wait here
}

func (f *fakeRunner) Export(ctx context.Context) (notify.Result, error) {
	f.exports++
	f.wait()
	return notify.Result{Workflow: notify.WorkflowExport, Success: true}, nil
}

func (f *fakeRunner) Import(ctx context.Context, filePath string, thenSales bool) (notify.Result, error) {
	f.imports++
	f.importPath = filePath
	f.thenSales = thenSales
	f.wait()
	return notify.Result{Workflow: notify.WorkflowImport, Success: true}, nil
}

func (f *fakeRunner) SalesDownload(ctx context.Context) (notify.Result, error) {
	f.sales++
	f.wait()
	return notify.Result{Workflow: notify.WorkflowSales, Success: true}, nil
}

func (f *fakeRunner) wait() {
	if f.block != nil {
		<-f.block
	}
}

func newTestServer(t *testing.T, fr *fakeRunner) *Server {
	t.Helper()
	st, err := settings.Open(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New("127.0.0.1:0", fr, st, notify.NewBroadcaster(), nil, log)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestExportAcceptedAndSecondRequestConflicts(t *testing.T) {
	fr := &fakeRunner{block: make(chan struct{})}
	s := newTestServer(t, fr)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/workflows/export", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("first request status = %d, want 202", rr.Code)
	}

	// The first run is still blocked inside the fake runner.
	rr2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr2, httptest.NewRequest(http.MethodPost, "/workflows/sales", nil))
	if rr2.Code != http.StatusConflict {
		t.Fatalf("second request status = %d, want 409", rr2.Code)
	}

	close(fr.block)

	// The slot frees up once the run finishes.
	deadline := time.Now().Add(2 * time.Second)
	for {
		rr3 := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr3, httptest.NewRequest(http.MethodPost, "/workflows/export", nil))
		if rr3.Code == http.StatusAccepted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("slot never freed, last status = %d", rr3.Code)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestImportRequiresFilePath(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})

	body := bytes.NewBufferString(`{}`)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/workflows/import", body))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestImportPassesPathAndThenSales(t *testing.T) {
	fr := &fakeRunner{}
	s := newTestServer(t, fr)

	body := bytes.NewBufferString(`{"filePath":"/data/attrs.csv","thenSales":true}`)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/workflows/import", body))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fr.imports == 0 {
		if time.Now().After(deadline) {
			t.Fatal("import never started")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if fr.importPath != "/data/attrs.csv" || !fr.thenSales {
		t.Errorf("import called with path=%q thenSales=%v", fr.importPath, fr.thenSales)
	}
}

func TestSettingsRoundTripRedactsPassword(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})

	put := bytes.NewBufferString(`{"url":"https://portal.example.com","username":"u","password":"secret","downloadFolder":"/dl"}`)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/settings", put))
	if rr.Code != http.StatusOK {
		t.Fatalf("put status = %d, want 200", rr.Code)
	}

	rr2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr2, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if rr2.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr2.Code)
	}
	if strings.Contains(rr2.Body.String(), "secret") {
		t.Error("password leaked in settings response")
	}
	var view api.Settings
	if err := json.Unmarshal(rr2.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode settings view: %v", err)
	}
	if view.URL != "https://portal.example.com" || view.Username != "u" || view.DownloadFolder != "/dl" {
		t.Errorf("settings view = %+v", view)
	}
	if view.Password != "" {
		t.Error("password must be blank in the settings view")
	}

	// Updating with an empty password keeps the stored one.
	put2 := bytes.NewBufferString(`{"url":"https://portal.example.com","username":"u2"}`)
	rr3 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr3, httptest.NewRequest(http.MethodPut, "/settings", put2))
	if rr3.Code != http.StatusOK {
		t.Fatalf("second put status = %d", rr3.Code)
	}
	if got := s.settings.Get().Password; got != "secret" {
		t.Errorf("stored password = %q, want preserved", got)
	}
}

func TestEventsStream(t *testing.T) {
	fr := &fakeRunner{}
	s := newTestServer(t, fr)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the subscription a moment to register before publishing.
	time.Sleep(50 * time.Millisecond)
	s.events.Status("logging in")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev notify.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != "status" || ev.Message != "logging in" {
		t.Errorf("event = %+v", ev)
	}
}
