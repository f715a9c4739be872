package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jgoulah/campusenergy/pkg/models"
)

// parseMonthlyCSV parses month,utility,energy_mwh rows. Columns are located
// by header name; energy_kwh is accepted in place of energy_mwh. Rows with an
// unusable energy value are kept and marked malformed.
func parseMonthlyCSV(r io.Reader) ([]models.MonthlyTrend, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	monthCol, ok := cols["month"]
	if !ok {
		return nil, fmt.Errorf("missing month column in header %v", header)
	}
	utilityCol, hasUtility := cols["utility"]
	energyCol, divisor := -1, 1.0
	if i, ok := cols["energy_mwh"]; ok {
		energyCol = i
	} else if i, ok := cols["energy_kwh"]; ok {
		energyCol, divisor = i, 1000
	}

	var records []models.MonthlyTrend
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		rec := models.MonthlyTrend{
			Month:   field(row, monthCol),
			Utility: models.UtilityElectricity,
		}
		if rec.Month == "" {
			continue
		}
		if hasUtility {
			if u := field(row, utilityCol); u != "" {
				rec.Utility = u
			}
		}

		// ParseFloat accepts NaN and Inf, which the pipeline writes for gaps
		v, err := strconv.ParseFloat(field(row, energyCol), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			rec.Malformed = true
		} else {
			rec.EnergyMWh = v / divisor
		}
		records = append(records, rec)
	}

	return records, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
