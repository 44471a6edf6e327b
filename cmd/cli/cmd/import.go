package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var thenSales bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Upload an attributes file and work it to acceptance",
	Long: `Uploads the file to the portal's import surface, drives the accept/reject
status row to a terminal state and, on acceptance, resubmits the store-level
report. With --then-sales, a sales download starts after the configured wait
so the resubmitted report has time to generate.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		if _, err := os.Stat(filePath); err != nil {
			return fmt.Errorf("import file: %w", err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger()

		res, err := newRunner(cfg, log).Import(cmd.Context(), filePath, thenSales)
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("import failed: %s", res.Message)
		}
		fmt.Println(res.Message)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&thenSales, "then-sales", false, "download the sales report after a successful import")
	rootCmd.AddCommand(importCmd)
}
