package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/campusenergy/internal/config"
	"github.com/jgoulah/campusenergy/internal/database"
	"github.com/jgoulah/campusenergy/internal/log"
	"github.com/jgoulah/campusenergy/internal/report"
	"github.com/jgoulah/campusenergy/internal/scenario"
	"github.com/jgoulah/campusenergy/pkg/models"
)

// focusFlags selects the scenario focus: campus or one top consumer
type focusFlags struct {
	schedule     int
	ml           int
	building     int
	buildingName string
}

func (f *focusFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.schedule, "schedule", 50, "Schedule optimization intensity (0-100)")
	cmd.Flags().IntVar(&f.ml, "ml", 50, "Predictive control intensity (0-100)")
	cmd.Flags().IntVar(&f.building, "building", 0, "Focus on the Nth top consumer (0 = whole campus)")
	cmd.Flags().StringVar(&f.buildingName, "building-name", "", "Focus on a top consumer by name")
}

var (
	scenarioFocus focusFlags
	scenarioSweep int
	scenarioJSON  bool
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Estimate savings for a set of intervention levels",
	Long: `Estimates the energy, cost, CO2 and peak demand savings of schedule optimization
and predictive control for the campus or a single top-consuming building, and
projects the monthly baseline of the last twelve months.

With --sweep the total savings are tabulated for a grid of intensities instead.`,
	Args: cobra.NoArgs,
	RunE: runScenario,
}

func init() {
	scenarioFocus.register(scenarioCmd)
	scenarioCmd.Flags().IntVar(&scenarioSweep, "sweep", 0, "Tabulate total savings for intensities in steps of N (1-100)")
	scenarioCmd.Flags().BoolVar(&scenarioJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	in, err := scenarioInput(ctx, db, cfg, scenarioFocus)
	if err != nil {
		return err
	}
	a := assumptions(cfg)

	if scenarioSweep > 0 {
		grid, err := scenario.Sweep(in, a, scenarioSweep)
		if err != nil {
			return fmt.Errorf("sweeping intensities: %w", err)
		}
		if scenarioJSON {
			return report.JSON(os.Stdout, grid)
		}
		fmt.Printf("Total savings for %s\n", in.Focus.Name)
		report.Sweep(os.Stdout, grid)
		return nil
	}

	res, err := scenario.Estimate(in, a)
	if err != nil {
		return fmt.Errorf("estimating scenario: %w", err)
	}
	if scenarioJSON {
		return report.JSON(os.Stdout, res)
	}
	report.Scenario(os.Stdout, res, a)
	return nil
}

// scenarioInput builds the estimator input from the last import. A building
// that cannot be found falls back to the campus with a warning.
func scenarioInput(ctx context.Context, db *database.DB, cfg *config.Config, f focusFlags) (scenario.Input, error) {
	summary, err := db.GetSummary()
	if err != nil {
		return scenario.Input{}, fmt.Errorf("loading summary: %w", err)
	}
	campusKWh, err := scenario.CampusBaseline(*summary)
	if err != nil {
		return scenario.Input{}, err
	}
	campus := scenario.CampusFocus(campusKWh, summary.TotalBuildings)

	focus := campus
	if f.buildingName != "" || f.building != 0 {
		buildings, err := db.ListBuildings(models.CategoryTopConsumer, 0)
		if err != nil {
			return scenario.Input{}, fmt.Errorf("listing top consumers: %w", err)
		}
		focus, err = resolveFocus(campus, buildings, f)
		if errors.Is(err, scenario.ErrMissingFocusEntity) {
			log.Ctx(ctx).Warn("building not found, using campus", "error", err)
			fmt.Fprintf(os.Stderr, "⚠ %v, showing the whole campus\n", err)
		} else if err != nil {
			return scenario.Input{}, err
		}
	}

	records, err := db.MonthlyTrends("")
	if err != nil {
		return scenario.Input{}, fmt.Errorf("loading monthly trends: %w", err)
	}
	months, monthly, malformed := scenario.BaselineSeries(records, cfg.GetBaselineUtility())
	if malformed > 0 {
		log.Ctx(ctx).Warn("malformed monthly records counted as zero", "count", malformed, "error", scenario.ErrMalformedMonthlyRecord)
	}
	if len(monthly) == 0 {
		log.Ctx(ctx).Warn("no monthly baseline found", "utility", cfg.GetBaselineUtility())
	}

	return scenario.Input{
		ScheduleIntensity: f.schedule,
		MLIntensity:       f.ml,
		Focus:             focus,
		CampusEnergyKWh:   campusKWh,
		Monthly:           monthly,
		Months:            months,
	}, nil
}

// resolveFocus maps the focus flags onto a top consumer. --building counts
// from 1, so a negative value names no building and falls back to the campus.
func resolveFocus(campus models.Focus, buildings []models.Building, f focusFlags) (models.Focus, error) {
	switch {
	case f.buildingName != "":
		return scenario.ResolveFocusByName(campus, buildings, f.buildingName)
	case f.building < 0:
		return campus, fmt.Errorf("building %d: %w", f.building, scenario.ErrMissingFocusEntity)
	default:
		return scenario.ResolveFocus(campus, buildings, f.building-1)
	}
}
