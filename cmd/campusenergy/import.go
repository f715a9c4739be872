package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/campusenergy/internal/loader"
	"github.com/jgoulah/campusenergy/internal/log"
)

var importCmd = &cobra.Command{
	Use:   "import [source]",
	Short: "Import a dashboard export",
	Long: `Loads the dashboard export from a directory or http(s) base URL and stores it
in the local SQLite database, replacing the previous import.

The full dashboard_data.json is used when present. Otherwise summary.json,
buildings.json and time_patterns.json (plus an optional monthly_trends.csv)
are fetched. The source defaults to 'source' in config.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Import started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))
	ctx := commandContext(cmd)

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	location := cfg.Source
	if len(args) == 1 {
		location = args[0]
	}
	if location == "" {
		return fmt.Errorf("no source given. Pass a directory or URL, or set 'source' in config.yaml")
	}

	src, err := loader.NewSource(location, cfg.GetFetchTimeout())
	if err != nil {
		return fmt.Errorf("creating source: %w", err)
	}

	fmt.Printf("Loading export from %s...\n", src)
	ds, err := loader.New(src, loader.Options{MaxPlausibleEUI: cfg.GetMaxPlausibleEUI()}).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading export: %w", err)
	}

	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	id, err := db.ReplaceDataset(ds)
	if err != nil {
		return fmt.Errorf("storing dataset: %w", err)
	}
	log.Ctx(ctx).Debug("stored dataset", "import_id", id, "db", getDBPath())

	fmt.Printf("✓ Imported %s buildings, %s monthly records, %d heatmap cells (import %s)\n",
		humanize.Comma(int64(len(ds.Buildings))), humanize.Comma(int64(len(ds.Monthly))), len(ds.Heatmap), id[:8])
	if len(ds.ModelComparison) > 0 || len(ds.TempVsEnergy) > 0 {
		fmt.Printf("  %d utilities, %d temperature bins, %d degree days, %d models, %s predictions\n",
			len(ds.UtilityTotals), len(ds.TempVsEnergy), len(ds.DegreeDays), len(ds.ModelComparison), humanize.Comma(int64(len(ds.Predictions))))
	}
	if n := len(ds.Rejected); n > 0 {
		fmt.Printf("⚠ Rejected %d buildings with mean EUI above %s\n", n, humanize.Ftoa(cfg.GetMaxPlausibleEUI()))
	}
	if ds.MalformedRecords > 0 {
		fmt.Printf("⚠ %d malformed monthly records counted as zero\n", ds.MalformedRecords)
	}

	return nil
}
