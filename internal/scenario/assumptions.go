package scenario

// Assumptions are the fixed constants of the what-if model
type Assumptions struct {
	ScheduleMinPct      float64
	ScheduleMaxPct      float64
	MLMinPct            float64
	MLMaxPct            float64
	PeakReductionFactor float64
	OverlapFactor       float64 // share of the smaller intervention counted twice
	MaxTotalPct         float64
	CostPerKWh          float64 // dollars
	CO2TonsPerKWh       float64
	CampusPeakKW        float64
}

// DefaultAssumptions returns the constants used by the dashboard
func DefaultAssumptions() Assumptions {
	return Assumptions{
		ScheduleMinPct:      0.08,
		ScheduleMaxPct:      0.12,
		MLMinPct:            0.05,
		MLMaxPct:            0.08,
		PeakReductionFactor: 0.7,
		OverlapFactor:       0.3,
		MaxTotalPct:         0.25,
		CostPerKWh:          0.12,
		CO2TonsPerKWh:       0.0004,
		CampusPeakKW:        12000,
	}
}
