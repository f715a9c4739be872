package scenario

import (
	"sort"
	"strings"
	"time"

	"github.com/jgoulah/campusenergy/pkg/models"
)

const monthLayout = "2006-01"

// MonthTotal is the summed energy of one calendar month
type MonthTotal struct {
	Month  string
	Energy float64
}

// FilterUtility keeps records of one utility. An empty utility keeps everything.
func FilterUtility(records []models.MonthlyTrend, utility string) []models.MonthlyTrend {
	if utility == "" {
		return records
	}
	var out []models.MonthlyTrend
	for _, r := range records {
		if strings.EqualFold(r.Utility, utility) {
			out = append(out, r)
		}
	}
	return out
}

// GroupByMonth sums records per month and returns months in ascending order.
// Months whose records are all zero or malformed are kept with a zero value.
// The second return value counts malformed records, including records whose
// month key cannot be parsed (those are skipped).
func GroupByMonth(records []models.MonthlyTrend) ([]MonthTotal, int) {
	sums := make(map[string]float64)
	malformed := 0
	for _, r := range records {
		t, err := time.Parse(monthLayout, strings.TrimSpace(r.Month))
		if err != nil {
			malformed++
			continue
		}
		key := t.Format(monthLayout)
		if r.Malformed {
			malformed++
			sums[key] += 0
			continue
		}
		sums[key] += r.EnergyMWh
	}

	out := make([]MonthTotal, 0, len(sums))
	for month, energy := range sums {
		out = append(out, MonthTotal{Month: month, Energy: energy})
	}
	// YYYY-MM sorts lexically in calendar order
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, malformed
}

// TrailingYear returns the twelve consecutive months ending at the latest
// month in totals, filling months without data with zero. totals must be
// sorted as returned by GroupByMonth. It returns nil when totals is empty.
func TrailingYear(totals []MonthTotal) []MonthTotal {
	if len(totals) == 0 {
		return nil
	}
	last, err := time.Parse(monthLayout, totals[len(totals)-1].Month)
	if err != nil {
		return nil
	}

	byMonth := make(map[string]float64, len(totals))
	for _, t := range totals {
		byMonth[t.Month] = t.Energy
	}

	out := make([]MonthTotal, 12)
	for i := 0; i < 12; i++ {
		key := last.AddDate(0, i-11, 0).Format(monthLayout)
		out[i] = MonthTotal{Month: key, Energy: byMonth[key]}
	}
	return out
}

// Split returns the labels and values of a month series
func Split(totals []MonthTotal) ([]string, []float64) {
	labels := make([]string, len(totals))
	values := make([]float64, len(totals))
	for i, t := range totals {
		labels[i] = t.Month
		values[i] = t.Energy
	}
	return labels, values
}

// BaselineSeries filters, groups and windows monthly records into the twelve
// month baseline used by Estimate.
func BaselineSeries(records []models.MonthlyTrend, utility string) ([]string, []float64, int) {
	totals, malformed := GroupByMonth(FilterUtility(records, utility))
	labels, values := Split(TrailingYear(totals))
	return labels, values, malformed
}
