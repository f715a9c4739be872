package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/campusenergy/internal/browser"
)

var (
	snapshotOut     string
	snapshotVisible bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a screenshot of the web dashboard",
	Long: `Opens the dashboard configured under 'dashboard' in config.yaml with headless
Chrome and saves a full page PNG screenshot.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "", "Output file (default: dashboard-<timestamp>.png)")
	snapshotCmd.Flags().BoolVar(&snapshotVisible, "visible", false, "Show browser window (for debugging)")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := browser.FromConfig(cfg.Dashboard)
	opts.Visible = snapshotVisible
	opts.Timeout = cfg.GetFetchTimeout() * 2

	fmt.Printf("Capturing %s...\n", opts.URL)
	png, err := browser.Snapshot(ctx, opts)
	if err != nil {
		return fmt.Errorf("taking snapshot: %w", err)
	}

	out := snapshotOut
	if out == "" {
		out = fmt.Sprintf("dashboard-%s.png", time.Now().Format("20060102-150405"))
	}
	if err := os.WriteFile(out, png, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	fmt.Printf("✓ Saved %s (%s)\n", out, humanize.Bytes(uint64(len(png))))
	return nil
}
