package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export both attribute sets and download the results",
	Long: `Runs the custom- and standard-attribute exports, waits for the portal's
"export ready" notifications, and saves the files into the download folder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger()

		res, err := newRunner(cfg, log).Export(cmd.Context())
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("export failed: %s", res.Message)
		}
		fmt.Println(res.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
