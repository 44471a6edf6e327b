package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Wait for the nightly sales report and download it",
	Long: `Polls the report job table until the store-level report completes, then
downloads, unzips and relocates the result and refreshes the reporting
spreadsheet. Polling attempts are separated by the configured check
interval, so this command can legitimately run for hours.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger()

		res, err := newRunner(cfg, log).SalesDownload(cmd.Context())
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("sales download failed: %s", res.Message)
		}
		fmt.Println(res.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(salesCmd)
}
