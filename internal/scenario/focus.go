package scenario

import (
	"fmt"
	"math"
	"strings"

	"github.com/jgoulah/campusenergy/pkg/models"
)

// CampusBaseline returns the campus electricity baseline in kWh. It should be
// checked once when a dataset is loaded.
func CampusBaseline(s models.Summary) (float64, error) {
	kwh := s.TotalElectricityMWh * 1000
	if !(kwh > 0) || math.IsInf(kwh, 0) {
		return 0, fmt.Errorf("total electricity %v MWh: %w", s.TotalElectricityMWh, ErrInvalidBaseline)
	}
	return kwh, nil
}

// CampusFocus returns the focus for the whole campus
func CampusFocus(campusKWh float64, buildings int) models.Focus {
	return models.Focus{
		Kind:          models.FocusCampus,
		Name:          "Campus",
		EnergyKWh:     campusKWh,
		BuildingCount: buildings,
	}
}

// ResolveFocus picks the building at index as focus. A negative index selects
// the campus. An index outside buildings falls back to the campus and returns
// ErrMissingFocusEntity together with the campus focus.
func ResolveFocus(campus models.Focus, buildings []models.Building, index int) (models.Focus, error) {
	if index < 0 {
		return campus, nil
	}
	if index >= len(buildings) {
		return campus, fmt.Errorf("building index %d of %d: %w", index, len(buildings), ErrMissingFocusEntity)
	}
	return buildingFocus(buildings[index]), nil
}

// ResolveFocusByName is ResolveFocus matching the building name case-insensitively
func ResolveFocusByName(campus models.Focus, buildings []models.Building, name string) (models.Focus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return campus, nil
	}
	for _, b := range buildings {
		if strings.EqualFold(strings.TrimSpace(b.Name), name) {
			return buildingFocus(b), nil
		}
	}
	return campus, fmt.Errorf("building %q: %w", name, ErrMissingFocusEntity)
}

func buildingFocus(b models.Building) models.Focus {
	return models.Focus{
		Kind:      models.FocusBuilding,
		Name:      b.Name,
		EnergyKWh: b.TotalEnergyKWh,
	}
}
