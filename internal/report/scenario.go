package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jgoulah/campusenergy/internal/scenario"
	"github.com/jgoulah/campusenergy/pkg/models"
)

// Scenario prints a what-if result with its monthly projection
func Scenario(w io.Writer, res models.ScenarioResult, a scenario.Assumptions) {
	focus := res.Focus.Name
	if res.Focus.Kind == models.FocusCampus && res.Focus.BuildingCount > 0 {
		focus = fmt.Sprintf("%s (%d buildings)", focus, res.Focus.BuildingCount)
	}

	fmt.Fprintf(w, "Scenario for %s\n", focus)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-28s %3d%%  -> %s\n", "Schedule optimization:", res.ScheduleIntensity, Percent(res.SchedulePct))
	fmt.Fprintf(w, "%-28s %3d%%  -> %s\n", "Predictive control:", res.MLIntensity, Percent(res.MLPct))
	fmt.Fprintf(w, "%-28s        -%s\n", "Overlap discount:", Percent(res.Overlap))
	fmt.Fprintf(w, "%-28s        %s\n", "Total savings:", Percent(res.TotalPct))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-28s %s\n", "Baseline energy:", Energy(res.Focus.EnergyKWh))
	fmt.Fprintf(w, "%-28s %s\n", "Energy saved:", Energy(res.SavingsEnergy))
	fmt.Fprintf(w, "%-28s %s\n", "Cost saved:", Money(res.CostSavings))
	fmt.Fprintf(w, "%-28s %.1f tons\n", "CO2 avoided:", res.CO2Savings)
	fmt.Fprintf(w, "%-28s %.0f kW of %.0f kW (%s)\n", "Peak demand reduction:", res.PeakReductionKW, res.PeakBaseKW, Percent(res.PeakReductionPct))

	if len(res.MonthlyBaseline) > 0 {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%-10s %16s %16s\n", "Month", "Baseline", "Optimized")
		for i := range res.MonthlyBaseline {
			label := fmt.Sprintf("M%02d", i+1)
			if i < len(res.Months) {
				label = res.Months[i]
			}
			fmt.Fprintf(w, "%-10s %16s %16s\n", label, Energy(res.MonthlyBaseline[i]), Energy(res.MonthlyOptimized[i]))
		}
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Assumptions: schedule %s-%s, predictive %s-%s, cap %s, $%.2f/kWh, %.4f t CO2/kWh\n",
		Percent(a.ScheduleMinPct), Percent(a.ScheduleMaxPct), Percent(a.MLMinPct), Percent(a.MLMaxPct),
		Percent(a.MaxTotalPct), a.CostPerKWh, a.CO2TonsPerKWh)
}

// Sweep prints total savings for a grid of intensities
func Sweep(w io.Writer, grid [][]models.ScenarioResult) {
	if len(grid) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("sched\\ml")
	for _, cell := range grid[0] {
		fmt.Fprintf(&b, " %7d", cell.MLIntensity)
	}
	fmt.Fprintln(w, b.String())

	for _, row := range grid {
		b.Reset()
		fmt.Fprintf(&b, "%8d", row[0].ScheduleIntensity)
		for _, cell := range row {
			fmt.Fprintf(&b, " %7s", Percent(cell.TotalPct))
		}
		fmt.Fprintln(w, b.String())
	}
}
