package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/campusenergy/internal/database"
	"github.com/jgoulah/campusenergy/internal/scenario"
	"github.com/jgoulah/campusenergy/pkg/models"
)

const fullExport = `{
  "generated_at": "2024-11-02T09:15:42.123456",
  "summary": {
    "total_electricity_mwh": 68732.9,
    "total_buildings": 412,
    "date_range": "Jan 2024 - Dec 2024",
    "avg_eui": 0.041,
    "potential_annual_savings_mwh": 1520.4,
    "potential_cost_savings": 152040.0
  },
  "campus_overview": {
    "utility_totals": [
      {"utility": "ELECTRICITY", "total_kwh": 68732900.0, "days": 366, "total_mwh": 68732.9},
      {"utility": "STEAM", "total_kwh": 1200000.0, "days": 300},
      {"total_kwh": 5.0}
    ],
    "monthly_trends": [
      {"month": "2024-01", "utility": "ELECTRICITY", "energy_kwh": 6000000.0, "energy_mwh": 6000.0},
      {"month": "2024-01", "utility": "GAS", "energy_kwh": 900000.0, "energy_mwh": 900.0},
      {"month": "2024-02", "utility": "ELECTRICITY", "energy_kwh": 5800000.0},
      {"month": "2024-03", "utility": "ELECTRICITY", "energy_mwh": NaN},
      {"month": "2024-04", "utility": "ELECTRICITY", "energy_mwh": "5400.5"}
    ]
  },
  "buildings": {
    "top_consumers": [
      {"simscode": 279, "building_name": "Medical Center", "site_name": "Main", "total_energy": 25000000.0, "mean_eui": 0.12, "latitude": NaN, "longitude": NaN},
      {"simscode": 1001, "building_name": "Broken Meter Hall", "total_energy": 28000000000000.0, "mean_eui": 433612.4},
      {"simscode": 44, "building_name": "Thompson Library", "total_energy": 9000000.0, "mean_eui": 0.05, "latitude": 40.0, "longitude": -83.01}
    ],
    "least_efficient": [
      {"simscode": 1001, "building_name": "Broken Meter Hall", "total_energy": 28000000000000.0, "mean_eui": 433612.4},
      {"simscode": 52, "building_name": null, "total_energy": 100.0, "mean_eui": 0.9}
    ],
    "retrofit_candidates": [],
    "map_data": [],
    "total_buildings": 999
  },
  "time_patterns": {
    "hourly_profile": [{"hour": 0, "avg_energy": 310.5}, {"hour": 13, "avg_energy": 455.0}],
    "dow_profile": [{"day_of_week": 0, "avg_energy": 420.0, "day_name": "Monday"}, {"day_of_week": 6, "avg_energy": 300.0}],
    "monthly_profile": [{"month": 2, "total_energy": 1000.0, "month_name": "Feb"}],
    "heatmap": [
      {"day_of_week": 0, "hour": 0, "energy_kwh": 300.0},
      {"day_of_week": 6, "hour": 23, "energy_kwh": 280.0},
      {"day_of_week": 9, "hour": 1, "energy_kwh": 1.0}
    ]
  },
  "weather": {
    "temp_vs_energy": [{"avg_temp": -5.2, "avg_energy": 9100.0}, {"avg_temp": NaN, "avg_energy": 1.0}, {"avg_temp": 24.8, "avg_energy": 8700.5}],
    "hdd_cdd": [{"date": "2024-12-30", "hdd": 22.5, "cdd": 0.0, "energy_kwh": 190000.0}]
  },
  "models": {
    "model_comparison": [
      {"model": "prophet", "mae": 820.4, "mape": 6.1, "rmse": 1010.2},
      {"model": "xgboost", "mae": 410.9, "mape": 3.2, "rmse": 560.0}
    ],
    "predictions": [
      {"datetime": "2024-12-31 00:00:00", "actual": 7800.0, "predicted": 7650.5, "utility": "ELECTRICITY", "model": "xgboost"},
      {"datetime": "2024-12-31 06:00:00", "actual": NaN, "predicted": 8100.0, "utility": "ELECTRICITY", "model": "xgboost"},
      {"datetime": "not a time", "predicted": 1.0}
    ],
    "feature_importance": [
      {"feature": "temperature_2m", "importance": 0.41},
      {"feature": "hour", "importance": 0.22},
      {"importance": 0.1}
    ]
  }
}`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoadFullExport(t *testing.T) {
	dir := writeFiles(t, map[string]string{FileDashboard: fullExport})

	ds, err := New(DirSource(dir), Options{MaxPlausibleEUI: 1000}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dir, ds.Source)
	assert.Equal(t, time.Date(2024, 11, 2, 9, 15, 42, 123456000, time.UTC), ds.GeneratedAt)
	assert.Equal(t, 68732.9, ds.Summary.TotalElectricityMWh)
	assert.Equal(t, 412, ds.Summary.TotalBuildings)
	assert.Equal(t, "Jan 2024 - Dec 2024", ds.Summary.DateRange)

	require.Len(t, ds.Monthly, 5)
	assert.Equal(t, 6000.0, ds.Monthly[0].EnergyMWh)
	assert.Equal(t, 5800.0, ds.Monthly[2].EnergyMWh)
	assert.True(t, ds.Monthly[3].Malformed)
	assert.Equal(t, 5400.5, ds.Monthly[4].EnergyMWh)
	assert.Equal(t, 1, ds.MalformedRecords)

	// the broken meter is dropped from both lists and reported once
	require.Len(t, ds.Rejected, 1)
	assert.Equal(t, "Broken Meter Hall", ds.Rejected[0].Name)

	top := ds.BuildingsIn(models.CategoryTopConsumer)
	require.Len(t, top, 2)
	assert.Equal(t, "Medical Center", top[0].Name)
	assert.Equal(t, "279", top[0].SimsCode)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, DefaultLatitude, top[0].Latitude)
	assert.Equal(t, DefaultLongitude, top[0].Longitude)
	assert.Equal(t, "Thompson Library", top[1].Name)
	assert.Equal(t, 2, top[1].Rank)

	least := ds.BuildingsIn(models.CategoryLeastEfficient)
	require.Len(t, least, 1)
	assert.Equal(t, "Unknown", least[0].Name)
	assert.Equal(t, 1, least[0].Rank)

	assert.Len(t, ds.Heatmap, 2)
	require.Len(t, ds.Profiles, 5)
	assert.Equal(t, models.ProfilePoint{Kind: "dow", Key: 6, Label: "Sunday", EnergyKWh: 300}, ds.Profiles[3])
	assert.Equal(t, models.ProfilePoint{Kind: "hour", Key: 13, Label: "13:00", EnergyKWh: 455}, ds.Profiles[1])

	assert.Equal(t, []models.FeatureImportance{
		{Feature: "temperature_2m", Importance: 0.41},
		{Feature: "hour", Importance: 0.22},
	}, ds.Features)

	assert.Equal(t, []models.UtilityTotal{
		{Utility: "ELECTRICITY", TotalKWh: 68732900, TotalMWh: 68732.9, Days: 366},
		{Utility: "STEAM", TotalKWh: 1200000, TotalMWh: 1200, Days: 300},
	}, ds.UtilityTotals)

	assert.Equal(t, []models.TempEnergyPoint{
		{AvgTemp: -5.2, AvgEnergy: 9100},
		{AvgTemp: 24.8, AvgEnergy: 8700.5},
	}, ds.TempVsEnergy)
	assert.Equal(t, []models.DegreeDay{{Date: "2024-12-30", HDD: 22.5, EnergyKWh: 190000}}, ds.DegreeDays)

	assert.Equal(t, []models.ModelMetrics{
		{Model: "prophet", MAE: 820.4, MAPE: 6.1, RMSE: 1010.2},
		{Model: "xgboost", MAE: 410.9, MAPE: 3.2, RMSE: 560},
	}, ds.ModelComparison)

	require.Len(t, ds.Predictions, 2)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), ds.Predictions[0].Time)
	require.NotNil(t, ds.Predictions[0].Actual)
	assert.Equal(t, 7800.0, *ds.Predictions[0].Actual)
	assert.Equal(t, "xgboost", ds.Predictions[0].Model)
	// a NaN actual means the forecast runs past the observed data
	assert.Nil(t, ds.Predictions[1].Actual)
	assert.Equal(t, 8100.0, ds.Predictions[1].Predicted)
}

func TestLoadWeatherCorrelationKey(t *testing.T) {
	dir := writeFiles(t, map[string]string{FileDashboard: `{
		"summary": {"total_electricity_mwh": 10},
		"weather_correlation": {"hdd_cdd": [{"date": "2024-01-02", "hdd": 30, "cdd": 0, "energy_kwh": 500}]}
	}`})

	ds, err := New(DirSource(dir), Options{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.DegreeDay{{Date: "2024-01-02", HDD: 30, EnergyKWh: 500}}, ds.DegreeDays)
	assert.Empty(t, ds.Predictions)
}

func TestLoadWithoutEUIFilter(t *testing.T) {
	dir := writeFiles(t, map[string]string{FileDashboard: fullExport})

	ds, err := New(DirSource(dir), Options{}).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.Rejected)
	assert.Len(t, ds.BuildingsIn(models.CategoryTopConsumer), 3)
}

func TestLoadSplitFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		FileSummary: `{"date_range": "Jan 2024 - Mar 2024"}`,
		FileBuildings: `{"top_consumers": [
			{"simscode": "A1", "building_name": "Hitchcock Hall", "total_energy": 4000000, "mean_eui": 0.2},
			{"simscode": "A2", "building_name": "Dreese Lab", "total_energy": 3000000, "mean_eui": 0.3}
		]}`,
		FileMonthlyCSV: "month,utility,energy_mwh\n" +
			"2024-01,ELECTRICITY,100\n" +
			"2024-02,ELECTRICITY,bad\n" +
			"2024-03,ELECTRICITY,150.5\n" +
			"2024-03,GAS,20\n",
	})

	ds, err := New(DirSource(dir), Options{MaxPlausibleEUI: 1000}).Load(context.Background())
	require.NoError(t, err)

	// total falls back to the electricity trend
	assert.InDelta(t, 250.5, ds.Summary.TotalElectricityMWh, 1e-9)
	// building count falls back to the distinct buildings seen
	assert.Equal(t, 2, ds.Summary.TotalBuildings)
	assert.Equal(t, "Jan 2024 - Mar 2024", ds.Summary.DateRange)
	require.Len(t, ds.Monthly, 4)
	assert.True(t, ds.Monthly[1].Malformed)
	assert.Equal(t, "GAS", ds.Monthly[3].Utility)
	assert.Empty(t, ds.Heatmap)
}

func TestLoadSplitNonFiniteCSVStores(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		FileSummary: `{"total_electricity_mwh": 300, "total_buildings": 5}`,
		FileMonthlyCSV: "month,utility,energy_mwh\n" +
			"2024-01,ELECTRICITY,NaN\n" +
			"2024-02,ELECTRICITY,inf\n" +
			"2024-03,ELECTRICITY,300\n",
	})

	ds, err := New(DirSource(dir), Options{}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Monthly, 3)
	assert.True(t, ds.Monthly[0].Malformed)
	assert.True(t, ds.Monthly[1].Malformed)
	assert.Equal(t, 2, ds.MalformedRecords)

	db, err := database.New(filepath.Join(t.TempDir(), "campus.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ReplaceDataset(ds)
	require.NoError(t, err)

	stored, err := db.MonthlyTrends(models.UtilityElectricity)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, models.MonthlyTrend{Month: "2024-01", Utility: "ELECTRICITY", Malformed: true}, stored[0])
	assert.Equal(t, 300.0, stored[2].EnergyMWh)

	// malformed months contribute zero to the baseline
	_, values, malformed := scenario.BaselineSeries(stored, models.UtilityElectricity)
	assert.Equal(t, 2, malformed)
	assert.Equal(t, 300.0, values[len(values)-1])
	assert.Zero(t, values[len(values)-2])
}

func TestLoadInvalidBaseline(t *testing.T) {
	dir := writeFiles(t, map[string]string{FileSummary: `{"total_electricity_mwh": 0, "total_buildings": 3}`})

	_, err := New(DirSource(dir), Options{}).Load(context.Background())
	assert.ErrorIs(t, err, scenario.ErrInvalidBaseline)
}

func TestLoadEmptySource(t *testing.T) {
	_, err := New(DirSource(t.TempDir()), Options{}).Load(context.Background())
	assert.ErrorContains(t, err, "no dashboard export found")
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{FileDashboard: `{"summary": [`})

	_, err := New(DirSource(dir), Options{}).Load(context.Background())
	assert.ErrorContains(t, err, FileDashboard)
}

func TestLoadHTTPSource(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/export/summary.json":
			w.Write([]byte(`{"total_electricity_mwh": 1200, "total_buildings": 10}`))
		case "/export/time_patterns.json":
			w.Write([]byte(`{"heatmap": [{"day_of_week": 2, "hour": 5, "energy_kwh": 12}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewSource(srv.URL+"/export", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	ds, err := New(src, Options{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200.0, ds.Summary.TotalElectricityMWh)
	assert.Equal(t, []models.HeatmapCell{{DayOfWeek: 2, Hour: 5, EnergyKWh: 12}}, ds.Heatmap)
	// dashboard_data.json plus the four split files
	assert.Equal(t, int32(5), requests.Load())
}

func TestLoadHTTPServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	src, err := NewSource(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = New(src, Options{}).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestNewSource(t *testing.T) {
	_, err := NewSource("", time.Second)
	assert.Error(t, err)

	src, err := NewSource("./dashboard/data", time.Second)
	require.NoError(t, err)
	assert.Equal(t, DirSource("./dashboard/data"), src)
}

func TestSanitize(t *testing.T) {
	in := `{"a": NaN, "b": [NaN,NaN, 1], "c": -Infinity, "d": "NaN stays", "e":Infinity}`
	out := string(sanitize([]byte(in)))
	assert.Equal(t, `{"a": null, "b": [null,null, 1], "c": null, "d": "NaN stays", "e":null}`, out)
	assert.False(t, strings.Contains(out, "Infinity"))
}

func TestParseMonthlyCSV(t *testing.T) {
	records, err := parseMonthlyCSV(strings.NewReader("Month, Energy_KWh\n2024-05, 2500\n2024-06,\n,5\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.MonthlyTrend{Month: "2024-05", Utility: models.UtilityElectricity, EnergyMWh: 2.5}, records[0])
	assert.True(t, records[1].Malformed)

	records, err = parseMonthlyCSV(strings.NewReader("month,energy_mwh\n2024-01,NaN\n2024-02,inf\n2024-03,-Infinity\n2024-04,12\n"))
	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, r := range records[:3] {
		assert.True(t, r.Malformed, r.Month)
		assert.Zero(t, r.EnergyMWh, r.Month)
	}
	assert.False(t, records[3].Malformed)

	_, err = parseMonthlyCSV(strings.NewReader("utility,energy_mwh\nGAS,1\n"))
	assert.ErrorContains(t, err, "missing month column")

	records, err = parseMonthlyCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}
