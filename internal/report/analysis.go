package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jgoulah/campusenergy/pkg/models"
)

// Utilities prints campus totals per utility with their share of the total
func Utilities(w io.Writer, totals []models.UtilityTotal) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No utility totals found")
		return
	}

	var sum float64
	for _, u := range totals {
		sum += u.TotalKWh
	}

	fmt.Fprintf(w, "%-20s %16s %8s %6s\n", "Utility", "Energy", "Share", "Days")
	fmt.Fprintln(w, rule)
	for _, u := range totals {
		share := 0.0
		if sum > 0 {
			share = u.TotalKWh / sum
		}
		fmt.Fprintf(w, "%-20s %16s %8s %6d\n", truncate(u.Utility, 20), Energy(u.TotalKWh), Percent(share), u.Days)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-20s %16s\n", "Total", Energy(sum))
}

// Weather prints electricity by temperature bin and the recent degree days
func Weather(w io.Writer, bins []models.TempEnergyPoint, days []models.DegreeDay) {
	if len(bins) == 0 && len(days) == 0 {
		fmt.Fprintln(w, "No weather data found")
		return
	}

	if len(bins) > 0 {
		max := 0.0
		for _, b := range bins {
			max = math.Max(max, b.AvgEnergy)
		}
		fmt.Fprintln(w, "\nAverage hourly electricity by temperature:")
		fmt.Fprintln(w, rule)
		for _, b := range bins {
			bar := 0
			if max > 0 {
				bar = int(math.Round(b.AvgEnergy / max * 30))
			}
			fmt.Fprintf(w, "%6.1f°C %14s  %s\n", b.AvgTemp, Energy(b.AvgEnergy), strings.Repeat("█", bar))
		}
	}

	if len(days) > 0 {
		fmt.Fprintln(w, "\nDegree days:")
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%-12s %8s %8s %16s\n", "Date", "HDD", "CDD", "Electricity")
		for _, d := range days {
			fmt.Fprintf(w, "%-12s %8.1f %8.1f %16s\n", d.Date, d.HDD, d.CDD, Energy(d.EnergyKWh))
		}
	}
}

// Models prints the forecasting model comparison and the latest predictions
func Models(w io.Writer, metrics []models.ModelMetrics, predictions []models.Prediction) {
	if len(metrics) == 0 && len(predictions) == 0 {
		fmt.Fprintln(w, "No model results found")
		return
	}

	if len(metrics) > 0 {
		best := 0
		for i, m := range metrics {
			if m.MAPE < metrics[best].MAPE {
				best = i
			}
		}
		fmt.Fprintln(w, "\nModel comparison:")
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%-12s %12s %10s %12s\n", "Model", "MAE", "MAPE", "RMSE")
		for i, m := range metrics {
			mark := ""
			if i == best {
				mark = "  *"
			}
			fmt.Fprintf(w, "%-12s %12s %9.2f%% %12s%s\n", m.Model,
				humanize.FormatFloat("#,###.#", m.MAE), m.MAPE, humanize.FormatFloat("#,###.#", m.RMSE), mark)
		}
	}

	if len(predictions) > 0 {
		fmt.Fprintln(w, "\nForecast:")
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%-17s %-10s %14s %14s\n", "Time", "Model", "Actual", "Predicted")
		for _, p := range predictions {
			actual := "-"
			if p.Actual != nil {
				actual = Energy(*p.Actual)
			}
			fmt.Fprintf(w, "%-17s %-10s %14s %14s\n", p.Time.Format("2006-01-02 15:04"), p.Model, actual, Energy(p.Predicted))
		}
	}
}
