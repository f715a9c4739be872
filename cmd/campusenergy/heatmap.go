package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/campusenergy/internal/report"
)

var heatmapColor bool

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Show average consumption by hour and weekday",
	Long: `Prints the 24x7 consumption heatmap of the last import. Cells are colored
blue (low) through green and yellow to red (high) when writing to a terminal.`,
	Args: cobra.NoArgs,
	RunE: runHeatmap,
}

func init() {
	heatmapCmd.Flags().BoolVar(&heatmapColor, "color", false, "Force colored output (default: only on a terminal)")
	rootCmd.AddCommand(heatmapCmd)
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.LastImport(); err != nil {
		return err
	}

	cells, err := db.Heatmap()
	if err != nil {
		return fmt.Errorf("loading heatmap: %w", err)
	}

	color := heatmapColor
	if !cmd.Flags().Changed("color") {
		color = report.IsTerminal(os.Stdout)
	}
	report.Heatmap(os.Stdout, cells, color)
	return nil
}
