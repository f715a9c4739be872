package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/campusenergy/internal/publisher"
	"github.com/jgoulah/campusenergy/internal/report"
	"github.com/jgoulah/campusenergy/internal/scenario"
)

var publishFocus focusFlags

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a scenario result to MQTT and Home Assistant",
	Long: `Estimates a scenario from the last import and publishes the result as retained
MQTT messages and/or a Home Assistant sensor state, depending on config.yaml.`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	publishFocus.register(publishCmd)
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))
	ctx := commandContext(cmd)

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	in, err := scenarioInput(ctx, db, cfg, publishFocus)
	if err != nil {
		return err
	}
	res, err := scenario.Estimate(in, assumptions(cfg))
	if err != nil {
		return fmt.Errorf("estimating scenario: %w", err)
	}

	// Create publisher
	pub, err := publisher.New(cfg.MQTT, cfg.HomeAssistant)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	if err := pub.Publish(ctx, res); err != nil {
		return fmt.Errorf("publishing: %w", err)
	}

	fmt.Printf("✓ Published %s savings for %s (%s, %s)\n",
		report.Percent(res.TotalPct), res.Focus.Name, report.Energy(res.SavingsEnergy), report.Money(res.CostSavings))
	return nil
}
