// Package config loads the portal URL, credentials, folder paths and the
// named wait durations used by the automation workflows.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Timings collects every fixed wait the workflows perform. The remote UI's
// animation and update latencies are encoded here as named, overridable
// values so tests can shrink them.
type Timings struct {
	// Login
	LoginNavTimeout      time.Duration
	LoginFieldTimeout    time.Duration
	LoginLandmarkTimeout time.Duration

	// Generic selector/modal waits
	SelectorTimeout time.Duration
	ModalTimeout    time.Duration

	// Export
	ExportSettle time.Duration
	ClickSettle  time.Duration

	// Import status loop
	ConfirmSettle         time.Duration
	StatusRecheckDelay    time.Duration
	ImportStatusMaxChecks int
	ImportSettle          time.Duration
	ImportTableTimeout    time.Duration

	// Message center
	InboxWait          time.Duration
	InboxPollInterval  time.Duration
	InboxReloadSettle  time.Duration
	MessageSettle      time.Duration
	MessageClickSettle time.Duration

	// Downloads
	DownloadTimeout  time.Duration
	PopupTimeout     time.Duration
	PopupRetryDelay  time.Duration
	MaxPopupAttempts int

	// Sales polling
	CheckInterval        time.Duration
	MaxDownloadAttempts  int
	SalesAfterImportWait time.Duration
}

// DefaultTimings mirrors the portal's observed behavior: UI settles are
// seconds, popup retries are fast, report generation is hours.
func DefaultTimings() Timings {
	return Timings{
		LoginNavTimeout:      30 * time.Second,
		LoginFieldTimeout:    5 * time.Second,
		LoginLandmarkTimeout: 20 * time.Second,

		SelectorTimeout: 10 * time.Second,
		ModalTimeout:    10 * time.Second,

		ExportSettle: 3 * time.Second,
		ClickSettle:  500 * time.Millisecond,

		ConfirmSettle:         2 * time.Second,
		StatusRecheckDelay:    3 * time.Second,
		ImportStatusMaxChecks: 20,
		ImportSettle:          15 * time.Second,
		ImportTableTimeout:    30 * time.Second,

		InboxWait:          10 * time.Minute,
		InboxPollInterval:  10 * time.Second,
		InboxReloadSettle:  2 * time.Second,
		MessageSettle:      5 * time.Second,
		MessageClickSettle: 2 * time.Second,

		DownloadTimeout:  60 * time.Second,
		PopupTimeout:     60 * time.Second,
		PopupRetryDelay:  5 * time.Second,
		MaxPopupAttempts: 5,

		CheckInterval:        30 * time.Minute,
		MaxDownloadAttempts:  5,
		SalesAfterImportWait: 90 * time.Minute,
	}
}

// Config holds all configuration values for the application.
type Config struct {
	// Portal access
	LoginURL string
	Username string
	Password string

	// Filesystem layout
	DownloadFolder    string
	DestinationFolder string
	SpreadsheetPath   string

	// Optional out-of-process spreadsheet updater. When empty the built-in
	// workbook refresh is used instead.
	UpdaterPath string

	// Browser launch
	ProfileDir      string
	BrowserPath     string // explicit executable, skips discovery
	BrowserFallback bool   // fall back to the bundled runtime when no system browser is found
	Headless        bool

	// Serve surface
	ListenAddr string

	Timings Timings
}

// Load reads configuration from the config file (default:
// $HOME/.portalsync.yaml), PORTALSYNC_* environment variables and an
// optional .env file, with env taking precedence over the file. When flags
// is non-nil, changed command-line flags take precedence over everything.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if flags != nil {
		for key, name := range map[string]string{
			"headless":        "headless",
			"download_folder": "download-folder",
			"listen_addr":     "listen",
		} {
			if f := flags.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".portalsync")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PORTALSYNC")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars may carry everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && configPath != "" {
			return nil, err
		}
	}

	t := DefaultTimings()
	t.CheckInterval = v.GetDuration("check_interval")
	t.MaxDownloadAttempts = v.GetInt("max_download_attempts")
	t.InboxWait = v.GetDuration("inbox_wait")
	t.SalesAfterImportWait = v.GetDuration("sales_after_import_wait")

	cfg := &Config{
		LoginURL:          v.GetString("url"),
		Username:          v.GetString("username"),
		Password:          v.GetString("password"),
		DownloadFolder:    v.GetString("download_folder"),
		DestinationFolder: v.GetString("destination_folder"),
		SpreadsheetPath:   v.GetString("spreadsheet_path"),
		UpdaterPath:       v.GetString("updater_path"),
		ProfileDir:        v.GetString("profile_dir"),
		BrowserPath:       v.GetString("browser_path"),
		BrowserFallback:   v.GetBool("browser_fallback"),
		Headless:          v.GetBool("headless"),
		ListenAddr:        v.GetString("listen_addr"),
		Timings:           t,
	}

	if cfg.DownloadFolder == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.DownloadFolder = filepath.Join(home, "Downloads")
	}
	if cfg.ProfileDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.ProfileDir = filepath.Join(home, ".portalsync", "browser-profile")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	t := DefaultTimings()
	v.SetDefault("check_interval", t.CheckInterval)
	v.SetDefault("max_download_attempts", t.MaxDownloadAttempts)
	v.SetDefault("inbox_wait", t.InboxWait)
	v.SetDefault("sales_after_import_wait", t.SalesAfterImportWait)
	v.SetDefault("headless", false)
	v.SetDefault("browser_fallback", true)
	v.SetDefault("listen_addr", "127.0.0.1:7171")
}

// MissingLogin lists the required login settings that are absent. The login
// workflow refuses to launch a browser while this is non-empty.
func (c *Config) MissingLogin() []string {
	var missing []string
	if c.LoginURL == "" {
		missing = append(missing, "url")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}
