// Package loader reads the dashboard's precomputed JSON export into a
// models.Dataset, filling absent fields with defaults and dropping buildings
// whose meters report implausible readings.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/campusenergy/internal/log"
	"github.com/jgoulah/campusenergy/internal/scenario"
	"github.com/jgoulah/campusenergy/pkg/models"
)

// Export file names
const (
	FileDashboard   = "dashboard_data.json"
	FileSummary     = "summary.json"
	FileBuildings   = "buildings.json"
	FileTimePattern = "time_patterns.json"
	FileMonthlyCSV  = "monthly_trends.csv"
)

// Defaults applied to building records missing location fields
const (
	DefaultLatitude  = 40.0
	DefaultLongitude = -83.0
)

// Options controls how an export is loaded
type Options struct {
	MaxPlausibleEUI float64 // buildings above this mean EUI are rejected; 0 disables
}

// Loader loads a dashboard export from a Source
type Loader struct {
	src  Source
	opts Options
}

// New creates a loader
func New(src Source, opts Options) *Loader {
	return &Loader{src: src, opts: opts}
}

// Load fetches and decodes the export. The full dashboard_data.json is used
// when present, otherwise the split files are fetched concurrently. The
// campus baseline is validated before returning.
func (l *Loader) Load(ctx context.Context) (*models.Dataset, error) {
	ds := &models.Dataset{Source: l.src.String()}

	full, err := l.src.Fetch(ctx, FileDashboard)
	switch {
	case err == nil:
		log.Ctx(ctx).Debug("loading full export", "file", FileDashboard, "bytes", len(full))
		if err := l.decodeFull(ds, full); err != nil {
			return nil, fmt.Errorf("%s: %w", FileDashboard, err)
		}
	case errors.Is(err, ErrNotFound):
		if err := l.loadSplit(ctx, ds); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	l.applyDefaults(ctx, ds)

	if _, err := scenario.CampusBaseline(ds.Summary); err != nil {
		return nil, fmt.Errorf("validating summary: %w", err)
	}
	return ds, nil
}

func (l *Loader) decodeFull(ds *models.Dataset, data []byte) error {
	root, err := decodeObject(data)
	if err != nil {
		return err
	}

	ds.GeneratedAt = parseTime(root.str("generated_at"))
	decodeSummary(ds, root.object("summary"))
	overview := root.object("campus_overview")
	decodeMonthly(ds, overview.list("monthly_trends"))
	decodeUtilityTotals(ds, overview.list("utility_totals"))
	decodeBuildings(ds, root.object("buildings"))
	decodeTimePatterns(ds, root.object("time_patterns"))

	weather := root.object("weather")
	if weather == nil {
		weather = root.object("weather_correlation")
	}
	decodeWeather(ds, weather)

	results := root.object("models")
	decodeFeatures(ds, results.list("feature_importance"))
	decodeModelComparison(ds, results.list("model_comparison"))
	decodePredictions(ds, results.list("predictions"))
	return nil
}

func (l *Loader) loadSplit(ctx context.Context, ds *models.Dataset) error {
	names := []string{FileSummary, FileBuildings, FileTimePattern, FileMonthlyCSV}
	files := make([][]byte, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			data, err := l.src.Fetch(gctx, name)
			if errors.Is(err, ErrNotFound) {
				log.Ctx(ctx).Debug("export file absent", "file", name)
				return nil
			}
			if err != nil {
				return err
			}
			files[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	found := false
	for _, f := range files {
		found = found || f != nil
	}
	if !found {
		return fmt.Errorf("no dashboard export found in %s", l.src)
	}

	if data := files[0]; data != nil {
		obj, err := decodeObject(data)
		if err != nil {
			return fmt.Errorf("%s: %w", FileSummary, err)
		}
		decodeSummary(ds, obj)
	}
	if data := files[1]; data != nil {
		obj, err := decodeObject(data)
		if err != nil {
			return fmt.Errorf("%s: %w", FileBuildings, err)
		}
		decodeBuildings(ds, obj)
	}
	if data := files[2]; data != nil {
		obj, err := decodeObject(data)
		if err != nil {
			return fmt.Errorf("%s: %w", FileTimePattern, err)
		}
		decodeTimePatterns(ds, obj)
	}
	if data := files[3]; data != nil {
		records, err := parseMonthlyCSV(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%s: %w", FileMonthlyCSV, err)
		}
		ds.Monthly = records
	}
	return nil
}

// applyDefaults fills summary gaps and rejects implausible buildings
func (l *Loader) applyDefaults(ctx context.Context, ds *models.Dataset) {
	logger := log.Ctx(ctx)

	if l.opts.MaxPlausibleEUI > 0 {
		kept := ds.Buildings[:0]
		rejected := make(map[string]bool)
		for _, b := range ds.Buildings {
			if b.MeanEUI <= l.opts.MaxPlausibleEUI {
				kept = append(kept, b)
				continue
			}
			key := buildingKey(b)
			if !rejected[key] {
				rejected[key] = true
				ds.Rejected = append(ds.Rejected, b)
				logger.Warn("rejecting building with implausible EUI",
					"building", b.Name,
					"mean_eui", b.MeanEUI,
					"max_plausible_eui", l.opts.MaxPlausibleEUI,
				)
			}
		}
		ds.Buildings = kept
		rerank(ds.Buildings)
	}

	if ds.Summary.TotalElectricityMWh <= 0 {
		var total float64
		for _, r := range ds.Monthly {
			if !r.Malformed && strings.EqualFold(r.Utility, models.UtilityElectricity) {
				total += r.EnergyMWh
			}
		}
		if total > 0 {
			logger.Info("summary missing total electricity, using monthly trends", "total_mwh", total)
			ds.Summary.TotalElectricityMWh = total
		}
	}

	if ds.Summary.TotalBuildings <= 0 {
		seen := make(map[string]bool)
		for _, b := range ds.Buildings {
			seen[buildingKey(b)] = true
		}
		for _, b := range ds.Rejected {
			seen[buildingKey(b)] = true
		}
		ds.Summary.TotalBuildings = len(seen)
	}

	for _, r := range ds.Monthly {
		if r.Malformed {
			ds.MalformedRecords++
		}
	}
	if ds.MalformedRecords > 0 {
		logger.Warn("monthly records without usable energy", "count", ds.MalformedRecords, "error", scenario.ErrMalformedMonthlyRecord)
	}
}

func decodeSummary(ds *models.Dataset, o object) {
	if o == nil {
		return
	}
	ds.Summary = models.Summary{
		TotalElectricityMWh:       o.numberOr("total_electricity_mwh", 0),
		TotalBuildings:            int(o.numberOr("total_buildings", 0)),
		DateRange:                 o.str("date_range"),
		AvgEUI:                    o.numberOr("avg_eui", 0),
		PotentialAnnualSavingsMWh: o.numberOr("potential_annual_savings_mwh", 0),
		PotentialCostSavings:      o.numberOr("potential_cost_savings", 0),
	}
}

func decodeMonthly(ds *models.Dataset, records []object) {
	for _, o := range records {
		r := models.MonthlyTrend{
			Month:   o.str("month"),
			Utility: o.strOr("utility", models.UtilityElectricity),
		}
		if mwh, ok := o.number("energy_mwh"); ok {
			r.EnergyMWh = mwh
		} else if kwh, ok := o.number("energy_kwh"); ok {
			r.EnergyMWh = kwh / 1000
		} else {
			r.Malformed = true
		}
		ds.Monthly = append(ds.Monthly, r)
	}
}

var buildingLists = []struct {
	key      string
	category string
}{
	{"top_consumers", models.CategoryTopConsumer},
	{"least_efficient", models.CategoryLeastEfficient},
	{"retrofit_candidates", models.CategoryRetrofitCandidate},
}

func decodeBuildings(ds *models.Dataset, o object) {
	if o == nil {
		return
	}
	for _, list := range buildingLists {
		for i, b := range o.list(list.key) {
			ds.Buildings = append(ds.Buildings, decodeBuilding(b, list.category, i+1))
		}
	}

	if n, ok := o.number("total_buildings"); ok && ds.Summary.TotalBuildings <= 0 {
		ds.Summary.TotalBuildings = int(n)
	}
	if ds.Summary.TotalBuildings <= 0 {
		if mapData := o.list("map_data"); len(mapData) > 0 {
			ds.Summary.TotalBuildings = len(mapData)
		}
	}
}

func decodeBuilding(o object, category string, rank int) models.Building {
	return models.Building{
		SimsCode:         o.str("simscode"),
		Name:             o.strOr("building_name", "Unknown"),
		SiteName:         o.strOr("site_name", "Unknown"),
		Category:         category,
		Rank:             rank,
		TotalEnergyKWh:   o.numberOr("total_energy", 0),
		MeanEUI:          o.numberOr("mean_eui", 0),
		GrossArea:        o.numberOr("gross_area", 0),
		BuildingAge:      o.numberOr("building_age", 0),
		Latitude:         o.numberOr("latitude", DefaultLatitude),
		Longitude:        o.numberOr("longitude", DefaultLongitude),
		RetrofitPriority: o.numberOr("retrofit_priority", 0),
	}
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func decodeTimePatterns(ds *models.Dataset, o object) {
	if o == nil {
		return
	}
	for _, c := range o.list("heatmap") {
		day, dok := c.number("day_of_week")
		hour, hok := c.number("hour")
		if !dok || !hok || day < 0 || day > 6 || hour < 0 || hour > 23 {
			continue
		}
		ds.Heatmap = append(ds.Heatmap, models.HeatmapCell{
			DayOfWeek: int(day),
			Hour:      int(hour),
			EnergyKWh: c.numberOr("energy_kwh", 0),
		})
	}

	for _, p := range o.list("hourly_profile") {
		if hour, ok := p.number("hour"); ok {
			ds.Profiles = append(ds.Profiles, models.ProfilePoint{
				Kind:      "hour",
				Key:       int(hour),
				Label:     fmt.Sprintf("%02d:00", int(hour)),
				EnergyKWh: p.numberOr("avg_energy", 0),
			})
		}
	}
	for _, p := range o.list("dow_profile") {
		if day, ok := p.number("day_of_week"); ok && day >= 0 && day <= 6 {
			ds.Profiles = append(ds.Profiles, models.ProfilePoint{
				Kind:      "dow",
				Key:       int(day),
				Label:     p.strOr("day_name", dayNames[int(day)]),
				EnergyKWh: p.numberOr("avg_energy", 0),
			})
		}
	}
	for _, p := range o.list("monthly_profile") {
		if month, ok := p.number("month"); ok && month >= 1 && month <= 12 {
			ds.Profiles = append(ds.Profiles, models.ProfilePoint{
				Kind:      "month",
				Key:       int(month),
				Label:     p.strOr("month_name", monthNames[int(month)-1]),
				EnergyKWh: p.numberOr("total_energy", 0),
			})
		}
	}
}

func decodeFeatures(ds *models.Dataset, records []object) {
	for _, f := range records {
		name := f.str("feature")
		if name == "" {
			continue
		}
		ds.Features = append(ds.Features, models.FeatureImportance{
			Feature:    name,
			Importance: f.numberOr("importance", 0),
		})
	}
}

func decodeUtilityTotals(ds *models.Dataset, records []object) {
	for _, o := range records {
		u := o.str("utility")
		if u == "" {
			continue
		}
		t := models.UtilityTotal{
			Utility:  u,
			TotalKWh: o.numberOr("total_kwh", 0),
			TotalMWh: o.numberOr("total_mwh", 0),
			Days:     int(o.numberOr("days", 0)),
		}
		if t.TotalMWh == 0 && t.TotalKWh != 0 {
			t.TotalMWh = t.TotalKWh / 1000
		}
		ds.UtilityTotals = append(ds.UtilityTotals, t)
	}
}

func decodeWeather(ds *models.Dataset, o object) {
	if o == nil {
		return
	}
	for _, p := range o.list("temp_vs_energy") {
		temp, tok := p.number("avg_temp")
		energy, eok := p.number("avg_energy")
		if !tok || !eok {
			continue
		}
		ds.TempVsEnergy = append(ds.TempVsEnergy, models.TempEnergyPoint{AvgTemp: temp, AvgEnergy: energy})
	}
	for _, d := range o.list("hdd_cdd") {
		date := d.str("date")
		if date == "" {
			continue
		}
		ds.DegreeDays = append(ds.DegreeDays, models.DegreeDay{
			Date:      date,
			HDD:       d.numberOr("hdd", 0),
			CDD:       d.numberOr("cdd", 0),
			EnergyKWh: d.numberOr("energy_kwh", 0),
		})
	}
}

func decodeModelComparison(ds *models.Dataset, records []object) {
	for _, m := range records {
		name := m.str("model")
		if name == "" {
			continue
		}
		ds.ModelComparison = append(ds.ModelComparison, models.ModelMetrics{
			Model: name,
			MAE:   m.numberOr("mae", 0),
			MAPE:  m.numberOr("mape", 0),
			RMSE:  m.numberOr("rmse", 0),
		})
	}
}

func decodePredictions(ds *models.Dataset, records []object) {
	for _, p := range records {
		ts := parseTime(p.str("datetime"))
		predicted, ok := p.number("predicted")
		if ts.IsZero() || !ok {
			continue
		}
		pred := models.Prediction{
			Time:      ts,
			Utility:   p.strOr("utility", models.UtilityElectricity),
			Model:     p.strOr("model", "unknown"),
			Predicted: predicted,
		}
		if actual, ok := p.number("actual"); ok {
			pred.Actual = &actual
		}
		ds.Predictions = append(ds.Predictions, pred)
	}
}

func buildingKey(b models.Building) string {
	if b.SimsCode != "" {
		return b.SimsCode
	}
	return strings.ToLower(b.Name)
}

// rerank renumbers buildings within each category after filtering
func rerank(buildings []models.Building) {
	next := make(map[string]int)
	for i := range buildings {
		next[buildings[i].Category]++
		buildings[i].Rank = next[buildings[i].Category]
	}
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
