package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/campusenergy/internal/database"
	"github.com/jgoulah/campusenergy/internal/log"
	"github.com/jgoulah/campusenergy/internal/report"
	"github.com/jgoulah/campusenergy/internal/scenario"
	"github.com/jgoulah/campusenergy/pkg/models"
)

var (
	listCategory string
	listLimit    int
	listUtility  string
)

var categoryTitles = map[string]string{
	models.CategoryTopConsumer:       "Top consumers",
	models.CategoryLeastEfficient:    "Least efficient buildings",
	models.CategoryRetrofitCandidate: "Retrofit candidates",
}

var listCmd = &cobra.Command{
	Use:   "list buildings|rejected|months|utilities|profiles|weather|features|models",
	Short: "List imported data",
	Long: `Displays imported data from the database.

  buildings  ranked building lists (filter with --category)
  rejected   buildings dropped at import for an implausible EUI
  months     monthly energy totals (filter with --utility)
  utilities  campus totals per utility
  profiles   average consumption by hour, weekday and month
  weather    electricity by temperature and degree days
  features   feature importance of the campus consumption model
  models     forecasting model comparison and latest predictions (--limit)`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"buildings", "rejected", "months", "utilities", "profiles", "weather", "features", "models"},
	RunE:      runList,
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "Building category (top_consumer, least_efficient, retrofit_candidate)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Limit number of buildings per category or predictions (0 = no limit)")
	listCmd.Flags().StringVar(&listUtility, "utility", "", "Utility for monthly totals (default: all utilities)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.LastImport(); err != nil {
		return err
	}

	switch args[0] {
	case "buildings":
		return listBuildings(db)
	case "rejected":
		rejected, err := db.ListRejected()
		if err != nil {
			return fmt.Errorf("listing rejected buildings: %w", err)
		}
		report.Buildings(os.Stdout, "Rejected (implausible EUI)", rejected)
	case "months":
		records, err := db.MonthlyTrends(listUtility)
		if err != nil {
			return fmt.Errorf("listing monthly trends: %w", err)
		}
		totals, malformed := scenario.GroupByMonth(records)
		if malformed > 0 {
			log.Ctx(commandContext(cmd)).Warn("malformed monthly records counted as zero", "count", malformed)
		}
		report.Months(os.Stdout, totals, "MWh")
	case "utilities":
		totals, err := db.UtilityTotals()
		if err != nil {
			return fmt.Errorf("listing utility totals: %w", err)
		}
		report.Utilities(os.Stdout, totals)
	case "weather":
		bins, days, err := db.Weather()
		if err != nil {
			return fmt.Errorf("listing weather: %w", err)
		}
		report.Weather(os.Stdout, bins, days)
	case "models":
		metrics, err := db.ModelComparison()
		if err != nil {
			return fmt.Errorf("listing model comparison: %w", err)
		}
		predictions, err := db.Predictions(listLimit)
		if err != nil {
			return fmt.Errorf("listing predictions: %w", err)
		}
		report.Models(os.Stdout, metrics, predictions)
	case "profiles":
		profiles, err := db.Profiles()
		if err != nil {
			return fmt.Errorf("listing profiles: %w", err)
		}
		report.Profiles(os.Stdout, profiles)
	case "features":
		features, err := db.Features()
		if err != nil {
			return fmt.Errorf("listing features: %w", err)
		}
		report.Features(os.Stdout, features)
	default:
		return fmt.Errorf("unknown list target: %s (available: buildings, rejected, months, utilities, profiles, weather, features, models)", args[0])
	}

	return nil
}

func listBuildings(db *database.DB) error {
	categories := []string{models.CategoryTopConsumer, models.CategoryLeastEfficient, models.CategoryRetrofitCandidate}
	if listCategory != "" {
		if _, ok := categoryTitles[listCategory]; !ok {
			return fmt.Errorf("unknown category: %s", listCategory)
		}
		categories = []string{listCategory}
	}

	for _, category := range categories {
		buildings, err := db.ListBuildings(category, listLimit)
		if err != nil {
			return fmt.Errorf("listing %s buildings: %w", category, err)
		}
		report.Buildings(os.Stdout, categoryTitles[category], buildings)
	}
	return nil
}
