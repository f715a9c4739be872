package scenario

import (
	"fmt"
	"math"

	"github.com/jgoulah/campusenergy/pkg/models"
)

// Input is everything a scenario depends on
type Input struct {
	ScheduleIntensity int // 0-100
	MLIntensity       int // 0-100
	Focus             models.Focus
	CampusEnergyKWh   float64
	Monthly           []float64 // baseline per month, any consistent unit
	Months            []string  // labels for Monthly, optional
}

// Estimate computes the savings projection for the given intervention levels.
// It has no side effects and depends only on in and a.
func Estimate(in Input, a Assumptions) (models.ScenarioResult, error) {
	if !(in.CampusEnergyKWh > 0) || math.IsInf(in.CampusEnergyKWh, 0) {
		return models.ScenarioResult{}, fmt.Errorf("campus baseline %v: %w", in.CampusEnergyKWh, ErrInvalidBaseline)
	}
	focusEnergy := in.Focus.EnergyKWh
	if !(focusEnergy >= 0) || math.IsInf(focusEnergy, 0) {
		return models.ScenarioResult{}, fmt.Errorf("focus baseline %v: %w", focusEnergy, ErrInvalidBaseline)
	}

	schedule := clampIntensity(in.ScheduleIntensity)
	ml := clampIntensity(in.MLIntensity)

	schedulePct := float64(schedule) / 100 * a.ScheduleMaxPct
	mlPct := float64(ml) / 100 * a.MLMaxPct
	overlap := math.Min(schedulePct, mlPct) * a.OverlapFactor
	totalPct := clamp(schedulePct+mlPct-overlap, 0, a.MaxTotalPct)

	savings := focusEnergy * totalPct
	share := focusEnergy / in.CampusEnergyKWh
	peakBase := a.CampusPeakKW * share
	peakPct := totalPct * a.PeakReductionFactor

	baseline := projectMonthly(in.Monthly, in.CampusEnergyKWh, share)
	optimized := make([]float64, len(baseline))
	for i, v := range baseline {
		optimized[i] = v * (1 - totalPct)
	}

	var months []string
	if len(in.Months) == len(baseline) {
		months = append(months, in.Months...)
	}

	return models.ScenarioResult{
		Focus:             in.Focus,
		ScheduleIntensity: schedule,
		MLIntensity:       ml,
		SchedulePct:       schedulePct,
		MLPct:             mlPct,
		Overlap:           overlap,
		TotalPct:          totalPct,
		SavingsEnergy:     savings,
		CostSavings:       savings * a.CostPerKWh,
		CO2Savings:        savings * a.CO2TonsPerKWh,
		PeakBaseKW:        peakBase,
		PeakReductionPct:  peakPct,
		PeakReductionKW:   peakBase * peakPct,
		Months:            months,
		MonthlyBaseline:   baseline,
		MonthlyOptimized:  optimized,
	}, nil
}

// projectMonthly rescales the series so it sums to the campus baseline, then
// scales it to the focus share of campus. An empty or non-positive series is
// replaced by an even split.
func projectMonthly(monthly []float64, campus, share float64) []float64 {
	out := make([]float64, len(monthly))
	if len(monthly) == 0 {
		return out
	}

	var sum float64
	for _, v := range monthly {
		if v > 0 && !math.IsInf(v, 0) {
			sum += v
		}
	}

	for i, v := range monthly {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		var campusMonth float64
		if sum > 0 {
			campusMonth = v * (campus / sum)
		} else {
			campusMonth = campus / float64(len(monthly))
		}
		out[i] = campusMonth * share
	}
	return out
}

// RescaleFactor is the multiplier applied to a monthly series so that it sums
// to the campus baseline. It returns 0 for an empty or non-positive series.
func RescaleFactor(monthly []float64, campus float64) float64 {
	var sum float64
	for _, v := range monthly {
		if v > 0 && !math.IsInf(v, 0) {
			sum += v
		}
	}
	if sum <= 0 {
		return 0
	}
	return campus / sum
}

// Sweep evaluates Estimate on a grid of intensities from 0 to 100 in the
// given step. Rows are schedule intensity, columns ML intensity.
func Sweep(in Input, a Assumptions, step int) ([][]models.ScenarioResult, error) {
	if step <= 0 || step > 100 {
		return nil, fmt.Errorf("sweep step %d out of range 1-100", step)
	}

	levels := make([]int, 0, 100/step+2)
	for l := 0; l < 100; l += step {
		levels = append(levels, l)
	}
	levels = append(levels, 100)

	grid := make([][]models.ScenarioResult, len(levels))
	for i, s := range levels {
		grid[i] = make([]models.ScenarioResult, len(levels))
		for j, m := range levels {
			cell := in
			cell.ScheduleIntensity = s
			cell.MLIntensity = m
			res, err := Estimate(cell, a)
			if err != nil {
				return nil, err
			}
			grid[i][j] = res
		}
	}
	return grid, nil
}

func clampIntensity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
