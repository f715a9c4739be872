package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/campusenergy/internal/config"
	"github.com/jgoulah/campusenergy/internal/database"
	"github.com/jgoulah/campusenergy/internal/scenario"
	"github.com/jgoulah/campusenergy/pkg/models"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "campus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ReplaceDataset(&models.Dataset{
		Source:  "test",
		Summary: models.Summary{TotalElectricityMWh: 100_000, TotalBuildings: 400},
		Monthly: []models.MonthlyTrend{
			{Month: "2024-01", Utility: "ELECTRICITY", EnergyMWh: 5000},
			{Month: "2024-02", Utility: "ELECTRICITY", EnergyMWh: 5000},
			{Month: "2024-02", Utility: "STEAM", EnergyMWh: 9000},
		},
		Buildings: []models.Building{
			{Name: "Medical Center", Category: models.CategoryTopConsumer, Rank: 1, TotalEnergyKWh: 25_000_000},
			{Name: "Library", Category: models.CategoryTopConsumer, Rank: 2, TotalEnergyKWh: 5_000_000},
		},
	})
	require.NoError(t, err)
	return db
}

func TestScenarioInputCampus(t *testing.T) {
	in, err := scenarioInput(context.Background(), testDB(t), &config.Config{}, focusFlags{schedule: 100, ml: 100})
	require.NoError(t, err)

	assert.Equal(t, models.FocusCampus, in.Focus.Kind)
	assert.Equal(t, 400, in.Focus.BuildingCount)
	assert.InDelta(t, 100_000_000, in.CampusEnergyKWh, 1e-6)
	require.Len(t, in.Monthly, 12)
	assert.Equal(t, "2024-02", in.Months[11])
	assert.Equal(t, 5000.0, in.Monthly[11])

	res, err := scenario.Estimate(in, scenario.DefaultAssumptions())
	require.NoError(t, err)
	assert.InDelta(t, 0.176, res.TotalPct, 1e-9)
	assert.InDelta(t, 12000, res.PeakBaseKW, 1e-9)
}

func TestScenarioInputBuilding(t *testing.T) {
	db := testDB(t)

	in, err := scenarioInput(context.Background(), db, &config.Config{}, focusFlags{building: 1})
	require.NoError(t, err)
	assert.Equal(t, "Medical Center", in.Focus.Name)
	assert.Equal(t, 25_000_000.0, in.Focus.EnergyKWh)

	in, err = scenarioInput(context.Background(), db, &config.Config{}, focusFlags{buildingName: "library"})
	require.NoError(t, err)
	assert.Equal(t, "Library", in.Focus.Name)
}

func TestScenarioInputMissingBuildingFallsBack(t *testing.T) {
	in, err := scenarioInput(context.Background(), testDB(t), &config.Config{}, focusFlags{building: 7})
	require.NoError(t, err)
	assert.Equal(t, models.FocusCampus, in.Focus.Kind)
}

func TestScenarioInputNegativeBuildingFallsBack(t *testing.T) {
	in, err := scenarioInput(context.Background(), testDB(t), &config.Config{}, focusFlags{building: -3})
	require.NoError(t, err)
	assert.Equal(t, models.FocusCampus, in.Focus.Kind)
	assert.Equal(t, 400, in.Focus.BuildingCount)
}

func TestResolveFocus(t *testing.T) {
	campus := scenario.CampusFocus(100_000_000, 400)
	buildings := []models.Building{{Name: "Medical Center", TotalEnergyKWh: 25_000_000}}

	focus, err := resolveFocus(campus, buildings, focusFlags{building: -3})
	assert.ErrorIs(t, err, scenario.ErrMissingFocusEntity)
	assert.Equal(t, campus, focus)

	focus, err = resolveFocus(campus, buildings, focusFlags{building: 2})
	assert.ErrorIs(t, err, scenario.ErrMissingFocusEntity)
	assert.Equal(t, campus, focus)

	focus, err = resolveFocus(campus, buildings, focusFlags{building: 1})
	require.NoError(t, err)
	assert.Equal(t, "Medical Center", focus.Name)

	focus, err = resolveFocus(campus, buildings, focusFlags{building: -1, buildingName: "medical center"})
	require.NoError(t, err)
	assert.Equal(t, "Medical Center", focus.Name)
}

func TestScenarioInputNoDataset(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = scenarioInput(context.Background(), db, &config.Config{}, focusFlags{})
	assert.ErrorIs(t, err, database.ErrNoDataset)
}

func TestAssumptionsOverrides(t *testing.T) {
	a := assumptions(&config.Config{CostPerKWh: 0.2})
	assert.Equal(t, 0.2, a.CostPerKWh)
	assert.Equal(t, scenario.DefaultAssumptions().CO2TonsPerKWh, a.CO2TonsPerKWh)
}
