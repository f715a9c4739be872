package models

import "time"

// Building categories as exported by the dashboard pipeline
const (
	CategoryTopConsumer       = "top_consumer"
	CategoryLeastEfficient    = "least_efficient"
	CategoryRetrofitCandidate = "retrofit_candidate"
)

// UtilityElectricity is the utility label used for the campus electricity baseline
const UtilityElectricity = "ELECTRICITY"

// Summary holds the campus-wide header statistics
type Summary struct {
	TotalElectricityMWh       float64 `json:"total_electricity_mwh"`
	TotalBuildings            int     `json:"total_buildings"`
	DateRange                 string  `json:"date_range"`
	AvgEUI                    float64 `json:"avg_eui"`
	PotentialAnnualSavingsMWh float64 `json:"potential_annual_savings_mwh"`
	PotentialCostSavings      float64 `json:"potential_cost_savings"`
}

// MonthlyTrend is one month of energy for one utility
type MonthlyTrend struct {
	Month     string  `json:"month"` // YYYY-MM
	Utility   string  `json:"utility"`
	EnergyMWh float64 `json:"energy_mwh"`
	Malformed bool    `json:"malformed,omitempty"` // energy field missing or unusable
}

// Building is a building record from one of the ranking lists
type Building struct {
	SimsCode         string  `json:"simscode"`
	Name             string  `json:"building_name"`
	SiteName         string  `json:"site_name"`
	Category         string  `json:"category"`
	Rank             int     `json:"rank"`
	TotalEnergyKWh   float64 `json:"total_energy"`
	MeanEUI          float64 `json:"mean_eui"`
	GrossArea        float64 `json:"gross_area"`
	BuildingAge      float64 `json:"building_age"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	RetrofitPriority float64 `json:"retrofit_priority"`
}

// HeatmapCell is the average electricity for one hour of one weekday
type HeatmapCell struct {
	DayOfWeek int     `json:"day_of_week"` // 0 = Monday
	Hour      int     `json:"hour"`
	EnergyKWh float64 `json:"energy_kwh"`
}

// ProfilePoint is one bucket of an hourly, weekday or monthly profile
type ProfilePoint struct {
	Kind      string  `json:"kind"` // hour, dow, month
	Key       int     `json:"key"`
	Label     string  `json:"label"`
	EnergyKWh float64 `json:"energy_kwh"`
}

// FeatureImportance is a row of the static model feature table
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// UtilityTotal is the campus total of one utility over the export period
type UtilityTotal struct {
	Utility  string  `json:"utility"`
	TotalKWh float64 `json:"total_kwh"`
	TotalMWh float64 `json:"total_mwh"`
	Days     int     `json:"days"`
}

// TempEnergyPoint is the average hourly electricity within one temperature bin
type TempEnergyPoint struct {
	AvgTemp   float64 `json:"avg_temp"` // °C
	AvgEnergy float64 `json:"avg_energy"`
}

// DegreeDay is one day of heating and cooling degree days against electricity
type DegreeDay struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	HDD       float64 `json:"hdd"`
	CDD       float64 `json:"cdd"`
	EnergyKWh float64 `json:"energy_kwh"`
}

// ModelMetrics are the holdout errors of one forecasting model
type ModelMetrics struct {
	Model string  `json:"model"`
	MAE   float64 `json:"mae"`
	MAPE  float64 `json:"mape"`
	RMSE  float64 `json:"rmse"`
}

// Prediction is one sampled forecast point. Actual is nil past the end of
// the observed data.
type Prediction struct {
	Time      time.Time `json:"datetime"`
	Utility   string    `json:"utility"`
	Model     string    `json:"model"`
	Actual    *float64  `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// Dataset is everything the dashboard export provides
type Dataset struct {
	GeneratedAt      time.Time           `json:"generated_at"`
	Source           string              `json:"source"`
	Summary          Summary             `json:"summary"`
	Monthly          []MonthlyTrend      `json:"monthly_trends"`
	UtilityTotals    []UtilityTotal      `json:"utility_totals"`
	Buildings        []Building          `json:"buildings"`
	Rejected         []Building          `json:"rejected"`
	Heatmap          []HeatmapCell       `json:"heatmap"`
	Profiles         []ProfilePoint      `json:"profiles"`
	TempVsEnergy     []TempEnergyPoint   `json:"temp_vs_energy"`
	DegreeDays       []DegreeDay         `json:"hdd_cdd"`
	Features         []FeatureImportance `json:"feature_importance"`
	ModelComparison  []ModelMetrics      `json:"model_comparison"`
	Predictions      []Prediction        `json:"predictions"`
	MalformedRecords int                 `json:"malformed_records"`
}

// BuildingsIn returns the buildings of a category ordered as stored
func (d *Dataset) BuildingsIn(category string) []Building {
	var out []Building
	for _, b := range d.Buildings {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out
}
