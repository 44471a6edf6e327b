package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"portalsync/internal/notify"
	"portalsync/internal/observability"
	"portalsync/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP and websocket surface",
	Long: `Starts the API a UI connects to: POST /workflows/{export,import,sales}
to trigger runs, GET/PUT /settings, GET /events for the live notification
stream, plus /healthz and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger()

		metricsHandler, shutdownMetrics, err := observability.InitMetrics()
		if err != nil {
			return err
		}

		metrics, err := observability.NewMetrics()
		if err != nil {
			return err
		}

		events := notify.NewBroadcaster()
		r := newRunner(cfg, log, events)
		r.Metrics = metrics

		path, err := settingsPath()
		if err != nil {
			return err
		}
		st, err := openSettings(path)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		defer func() { _ = shutdownMetrics(cmd.Context()) }()

		srv := server.New(cfg.ListenAddr, r, st, events, metricsHandler, log)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default 127.0.0.1:7171)")
	rootCmd.AddCommand(serveCmd)
}
