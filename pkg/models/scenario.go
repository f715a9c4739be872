package models

// Focus kinds
const (
	FocusCampus   = "campus"
	FocusBuilding = "building"
)

// Focus is the entity savings are scaled to: the whole campus or one building
type Focus struct {
	Kind          string  `json:"kind"`
	Name          string  `json:"name"`
	EnergyKWh     float64 `json:"energy_kwh"`
	BuildingCount int     `json:"building_count,omitempty"`
}

// ScenarioResult is the projection produced for one set of intervention levels.
// It is recomputed on every input change and never stored.
type ScenarioResult struct {
	Focus             Focus     `json:"focus"`
	ScheduleIntensity int       `json:"schedule_intensity"`
	MLIntensity       int       `json:"ml_intensity"`
	SchedulePct       float64   `json:"schedule_pct"`
	MLPct             float64   `json:"ml_pct"`
	Overlap           float64   `json:"overlap"`
	TotalPct          float64   `json:"total_pct"`
	SavingsEnergy     float64   `json:"savings_energy_kwh"`
	CostSavings       float64   `json:"cost_savings"`
	CO2Savings        float64   `json:"co2_savings_tons"`
	PeakBaseKW        float64   `json:"peak_base_kw"`
	PeakReductionPct  float64   `json:"peak_reduction_pct"`
	PeakReductionKW   float64   `json:"peak_reduction_kw"`
	Months            []string  `json:"months"`
	MonthlyBaseline   []float64 `json:"monthly_baseline"`
	MonthlyOptimized  []float64 `json:"monthly_optimized"`
}
