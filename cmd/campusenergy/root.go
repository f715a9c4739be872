package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jgoulah/campusenergy/internal/config"
	"github.com/jgoulah/campusenergy/internal/database"
	"github.com/jgoulah/campusenergy/internal/log"
	"github.com/jgoulah/campusenergy/internal/scenario"
)

var (
	cfgFile string
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "campusenergy",
	Short: "Explore campus energy data and estimate intervention savings",
	Long: `CampusEnergy imports the campus energy dashboard export into a local SQLite
database and estimates the energy, cost, CO2 and peak demand savings of
schedule optimization and predictive control for the campus or a single building.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetDefaultLogLevel(slog.LevelDebug)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./campus.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "campus.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// assumptions returns the estimator constants with config overrides applied
func assumptions(cfg *config.Config) scenario.Assumptions {
	a := scenario.DefaultAssumptions()
	a.CostPerKWh = cfg.GetCostPerKWh(a.CostPerKWh)
	a.CO2TonsPerKWh = cfg.GetCO2TonsPerKWh(a.CO2TonsPerKWh)
	return a
}

// commandContext returns the command context with a logger tagged with the command name
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.With(ctx, log.Ctx(ctx).With("cmd", cmd.Name()))
}
