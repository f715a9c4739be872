package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/campusenergy/internal/report"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the campus summary of the last import",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ds, err := db.LoadDataset()
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	if summaryJSON {
		return report.JSON(os.Stdout, ds.Summary)
	}
	report.Summary(os.Stdout, ds)
	return nil
}
