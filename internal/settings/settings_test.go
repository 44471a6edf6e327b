package settings

import (
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.yaml")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	in := Settings{
		URL:               "https://portal.example.com/login",
		Username:          "ops@example.com",
		Password:          "hunter2",
		DownloadFolder:    "/data/downloads",
		DestinationFolder: "/data/reports",
		SpreadsheetPath:   "/data/reports/weekly.xlsx",
		UpdaterPath:       "/usr/local/bin/refresh-sheet",
	}
	if err := s.Put(in); err != nil {
		t.Fatal(err)
	}

	// Reopen to prove it hit the disk.
	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	got := s2.Get()
	if got != in {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, in)
	}
}

func TestStoreOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Get(); got != (Settings{}) {
		t.Errorf("fresh store not empty: %+v", got)
	}
}

func TestRedactedHidesPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Settings{Username: "u", Password: "secret"}); err != nil {
		t.Fatal(err)
	}

	red := s.Redacted()
	if red.Password != "" {
		t.Error("password not redacted")
	}
	if red.Username != "u" {
		t.Error("non-secret fields must survive redaction")
	}
	if s.Get().Password != "secret" {
		t.Error("redaction must not mutate the store")
	}
}

func TestPutCanClearValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Settings{URL: "https://a", DownloadFolder: "/x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Settings{URL: "https://a"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Get().DownloadFolder; got != "" {
		t.Errorf("download folder = %q, want cleared", got)
	}
}
