// Package report renders datasets and scenario results for the terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/jgoulah/campusenergy/internal/scenario"
	"github.com/jgoulah/campusenergy/pkg/models"
)

const rule = "----------------------------------------------------------------"

// Energy formats kWh with thousands separators, switching to MWh and GWh for large values
func Energy(kwh float64) string {
	abs := math.Abs(kwh)
	switch {
	case abs >= 1e6:
		return humanize.FormatFloat("#,###.##", kwh/1e6) + " GWh"
	case abs >= 1e4:
		return humanize.FormatFloat("#,###.#", kwh/1e3) + " MWh"
	default:
		return humanize.FormatFloat("#,###.", kwh) + " kWh"
	}
}

// Money formats dollars
func Money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.", v)
}

// Percent formats a fraction as a percentage
func Percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	data, err := json.Marshal(v, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// Summary prints the dashboard header statistics
func Summary(w io.Writer, ds *models.Dataset) {
	s := ds.Summary
	fmt.Fprintf(w, "Campus Energy Summary (%s)\n", valueOr(s.DateRange, "unknown range"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-32s %s\n", "Total electricity:", Energy(s.TotalElectricityMWh*1000))
	fmt.Fprintf(w, "%-32s %s\n", "Buildings:", humanize.Comma(int64(s.TotalBuildings)))
	fmt.Fprintf(w, "%-32s %.3f\n", "Average EUI:", s.AvgEUI)
	fmt.Fprintf(w, "%-32s %s\n", "Potential annual savings:", Energy(s.PotentialAnnualSavingsMWh*1000))
	fmt.Fprintf(w, "%-32s %s\n", "Potential cost savings:", Money(s.PotentialCostSavings))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Source: %s\n", ds.Source)
	if !ds.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "Generated: %s (%s)\n", ds.GeneratedAt.Format("2006-01-02 15:04"), humanize.Time(ds.GeneratedAt))
	}
	if n := len(ds.Rejected); n > 0 {
		fmt.Fprintf(w, "Rejected buildings: %d (implausible EUI, see 'list rejected')\n", n)
	}
	if ds.MalformedRecords > 0 {
		fmt.Fprintf(w, "Malformed monthly records: %d (counted as zero)\n", ds.MalformedRecords)
	}
}

// Buildings prints a ranked building table
func Buildings(w io.Writer, title string, buildings []models.Building) {
	if len(buildings) == 0 {
		fmt.Fprintf(w, "No buildings found for %s\n", title)
		return
	}

	fmt.Fprintf(w, "\n%s:\n", title)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%4s  %-34s %14s %10s\n", "#", "Building", "Energy", "EUI")
	fmt.Fprintln(w, rule)
	for _, b := range buildings {
		fmt.Fprintf(w, "%4d  %-34s %14s %10s\n", b.Rank, truncate(b.Name, 34), Energy(b.TotalEnergyKWh), humanize.FormatFloat("#,###.###", b.MeanEUI))
	}
	fmt.Fprintln(w, rule)
}

// Months prints a monthly series per utility bucket
func Months(w io.Writer, totals []scenario.MonthTotal, unit string) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No monthly data found")
		return
	}

	var total float64
	fmt.Fprintf(w, "%-10s %14s\n", "Month", unit)
	fmt.Fprintln(w, rule[:25])
	for _, m := range totals {
		fmt.Fprintf(w, "%-10s %14s\n", m.Month, humanize.FormatFloat("#,###.#", m.Energy))
		total += m.Energy
	}
	fmt.Fprintln(w, rule[:25])
	fmt.Fprintf(w, "%-10s %14s\n", "Total", humanize.FormatFloat("#,###.#", total))
}

// Features prints the static model feature importance table
func Features(w io.Writer, features []models.FeatureImportance) {
	if len(features) == 0 {
		fmt.Fprintln(w, "No feature importance data found")
		return
	}

	max := 0.0
	for _, f := range features {
		max = math.Max(max, f.Importance)
	}

	fmt.Fprintf(w, "%-28s %10s\n", "Feature", "Importance")
	fmt.Fprintln(w, rule)
	for _, f := range features {
		bar := 0
		if max > 0 {
			bar = int(math.Round(f.Importance / max * 20))
		}
		fmt.Fprintf(w, "%-28s %10.4f  %s\n", truncate(f.Feature, 28), f.Importance, strings.Repeat("█", bar))
	}
}

var profileTitles = []struct{ kind, title string }{
	{"hour", "Average by hour"},
	{"dow", "Average by weekday"},
	{"month", "Average by month"},
}

// Profiles prints the hourly, weekday and monthly consumption profiles
func Profiles(w io.Writer, points []models.ProfilePoint) {
	if len(points) == 0 {
		fmt.Fprintln(w, "No profile data found")
		return
	}

	for _, pt := range profileTitles {
		var kind []models.ProfilePoint
		max := 0.0
		for _, p := range points {
			if p.Kind == pt.kind {
				kind = append(kind, p)
				max = math.Max(max, p.EnergyKWh)
			}
		}
		if len(kind) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s:\n", pt.title)
		fmt.Fprintln(w, rule)
		for _, p := range kind {
			bar := 0
			if max > 0 {
				bar = int(math.Round(p.EnergyKWh / max * 30))
			}
			fmt.Fprintf(w, "%-10s %14s  %s\n", valueOr(p.Label, fmt.Sprint(p.Key)), Energy(p.EnergyKWh), strings.Repeat("█", bar))
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
