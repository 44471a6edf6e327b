package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"portalsync/internal/browser"
	"portalsync/internal/config"
	"portalsync/internal/logger"
	"portalsync/internal/notify"
	"portalsync/internal/runner"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Portalctl automates the retail-analytics portal's export, import and sales-report workflows",
	Long: `portalctl drives a real browser against the retail-analytics portal:
it logs in with a persistent profile, exports and imports category
attributes, waits for the nightly store-level sales report, and lands the
result where the reporting spreadsheet expects it.

Common workflows:

  Export both attribute sets and download the results:
    portalctl export

  Upload an attributes file and resubmit the report on acceptance:
    portalctl import attributes.csv

  Import, then download the regenerated sales report after the wait:
    portalctl import attributes.csv --then-sales

  Poll for the nightly sales report (may run for hours):
    portalctl sales

  Run the local HTTP/websocket surface for a UI:
    portalctl serve

Configuration:
  Settings live in $HOME/.portalsync.yaml and can be overridden with
  PORTALSYNC_* environment variables:
    PORTALSYNC_URL        portal login URL
    PORTALSYNC_USERNAME   portal account
    PORTALSYNC_PASSWORD   portal password`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.portalsync.yaml)")
	rootCmd.PersistentFlags().Bool("headless", false, "run the browser without a window")
	rootCmd.PersistentFlags().String("download-folder", "", "where downloads land (default is $HOME/Downloads)")
}

// loadConfig reads the effective configuration for a command run, letting
// changed flags of cmd override file and environment values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// settingsPath is the file the config subcommand edits; config.Load reads
// the same file.
func settingsPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".portalsync.yaml"), nil
}

// newRunner wires a workflow runner for one-shot commands. notifiers beyond
// the log notifier can be appended by callers.
func newRunner(cfg *config.Config, log *slog.Logger, extra ...notify.Notifier) *runner.Runner {
	n := notify.Multi(append([]notify.Notifier{&notify.LogNotifier{Log: log}}, extra...))
	return &runner.Runner{
		Cfg:     cfg,
		Browser: browser.NewManager(&browser.PlaywrightLauncher{Log: log}, log),
		Notify:  n,
		Log:     log,
	}
}

func newLogger() *slog.Logger {
	return logger.New()
}
