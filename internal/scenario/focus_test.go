package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/campusenergy/pkg/models"
)

func TestCampusBaseline(t *testing.T) {
	kwh, err := CampusBaseline(models.Summary{TotalElectricityMWh: 68732.9})
	require.NoError(t, err)
	assert.InDelta(t, 68_732_900.0, kwh, 1e-6)

	_, err = CampusBaseline(models.Summary{})
	assert.ErrorIs(t, err, ErrInvalidBaseline)
	_, err = CampusBaseline(models.Summary{TotalElectricityMWh: -3})
	assert.ErrorIs(t, err, ErrInvalidBaseline)
}

func TestResolveFocus(t *testing.T) {
	campus := CampusFocus(1000, 3)
	buildings := []models.Building{
		{Name: "Hitchcock Hall", TotalEnergyKWh: 200},
		{Name: "Dreese Lab", TotalEnergyKWh: 150},
	}

	f, err := ResolveFocus(campus, buildings, -1)
	require.NoError(t, err)
	assert.Equal(t, campus, f)

	f, err = ResolveFocus(campus, buildings, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Focus{Kind: models.FocusBuilding, Name: "Dreese Lab", EnergyKWh: 150}, f)

	f, err = ResolveFocus(campus, buildings, 2)
	assert.ErrorIs(t, err, ErrMissingFocusEntity)
	assert.Equal(t, campus, f)
}

func TestResolveFocusByName(t *testing.T) {
	campus := CampusFocus(1000, 3)
	buildings := []models.Building{{Name: "Hitchcock Hall", TotalEnergyKWh: 200}}

	f, err := ResolveFocusByName(campus, buildings, "  hitchcock hall ")
	require.NoError(t, err)
	assert.Equal(t, "Hitchcock Hall", f.Name)

	f, err = ResolveFocusByName(campus, buildings, "")
	require.NoError(t, err)
	assert.Equal(t, models.FocusCampus, f.Kind)

	f, err = ResolveFocusByName(campus, buildings, "Ghost Hall")
	assert.ErrorIs(t, err, ErrMissingFocusEntity)
	assert.Equal(t, campus, f)
}
