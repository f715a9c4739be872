package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	assert.Equal(t, "ELECTRICITY", cfg.GetBaselineUtility())
	assert.Equal(t, 1000.0, cfg.GetMaxPlausibleEUI())
	assert.Equal(t, 30*time.Second, cfg.GetFetchTimeout())
	assert.Equal(t, 0.12, cfg.GetCostPerKWh(0.12))
	assert.Equal(t, 0.0004, cfg.GetCO2TonsPerKWh(0.0004))
	assert.Equal(t, "campus_energy", cfg.MQTT.GetTopicPrefix())

	w, h := cfg.Dashboard.GetViewport()
	assert.Equal(t, 1440, w)
	assert.Equal(t, 900, h)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: https://energy.example.edu/dashboard/data
baseline_utility: STEAM
max_plausible_eui: 250
fetch_timeout_seconds: 5
cost_per_kwh: 0.095
mqtt:
  enabled: true
  broker: localhost:1883
  topic_prefix: osu
home_assistant:
  enabled: true
  url: http://ha.local:8123
  token: abc
  entity_id: sensor.campus_savings
dashboard:
  url: https://energy.example.edu/dashboard/
  width: 1920
  cookies:
    - name: session
      value: xyz
      domain: energy.example.edu
      path: /
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://energy.example.edu/dashboard/data", cfg.Source)
	assert.Equal(t, "STEAM", cfg.GetBaselineUtility())
	assert.Equal(t, 250.0, cfg.GetMaxPlausibleEUI())
	assert.Equal(t, 5*time.Second, cfg.GetFetchTimeout())
	assert.Equal(t, 0.095, cfg.GetCostPerKWh(0.12))
	assert.Equal(t, 0.0004, cfg.GetCO2TonsPerKWh(0.0004))
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "osu", cfg.MQTT.GetTopicPrefix())
	assert.Equal(t, "sensor.campus_savings", cfg.HomeAssistant.EntityID)
	require.Len(t, cfg.Dashboard.Cookies, 1)
	assert.Equal(t, "session", cfg.Dashboard.Cookies[0].Name)

	w, h := cfg.Dashboard.GetViewport()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 900, h)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed"), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{Source: "./export", MaxPlausibleEUI: 500}
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
