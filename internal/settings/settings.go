// Package settings persists the user-editable configuration the workflows
// read: portal URL, credentials, and the folder/file paths. It is a small
// key-value store over a YAML file; the automation core only ever reads it
// through config.Load.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Settings is the editable subset of the configuration.
type Settings struct {
	URL               string `json:"url" mapstructure:"url"`
	Username          string `json:"username" mapstructure:"username"`
	Password          string `json:"password,omitempty" mapstructure:"password"`
	DownloadFolder    string `json:"downloadFolder" mapstructure:"download_folder"`
	DestinationFolder string `json:"destinationFolder" mapstructure:"destination_folder"`
	SpreadsheetPath   string `json:"spreadsheetPath" mapstructure:"spreadsheet_path"`
	UpdaterPath       string `json:"updaterPath" mapstructure:"updater_path"`
}

// Store reads and writes settings on disk.
type Store struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// Open loads (or initializes) the settings file at path.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}
	return &Store{path: path, v: v}, nil
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Settings
	_ = s.v.Unmarshal(&out)
	return out
}

// Put replaces the stored settings and writes them to disk. Empty fields are
// persisted as empty, so callers can clear a value.
func (s *Store) Put(in Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set("url", in.URL)
	s.v.Set("username", in.Username)
	s.v.Set("password", in.Password)
	s.v.Set("download_folder", in.DownloadFolder)
	s.v.Set("destination_folder", in.DestinationFolder)
	s.v.Set("spreadsheet_path", in.SpreadsheetPath)
	s.v.Set("updater_path", in.UpdaterPath)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Redacted returns the settings with the password blanked, for display and
// for the HTTP surface.
func (s *Store) Redacted() Settings {
	out := s.Get()
	if out.Password != "" {
		out.Password = ""
	}
	return out
}
