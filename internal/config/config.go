package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Source              string          `yaml:"source,omitempty"`                // Directory or base URL of the dashboard export
	BaselineUtility     string          `yaml:"baseline_utility,omitempty"`      // Utility used for the monthly baseline (fallback: ELECTRICITY)
	MaxPlausibleEUI     float64         `yaml:"max_plausible_eui,omitempty"`     // Buildings above this are rejected at import (fallback: 1000)
	FetchTimeoutSeconds int             `yaml:"fetch_timeout_seconds,omitempty"` // HTTP timeout per file (fallback: 30)
	CostPerKWh          float64         `yaml:"cost_per_kwh,omitempty"`          // Overrides the $0.12/kWh cost assumption
	CO2TonsPerKWh       float64         `yaml:"co2_tons_per_kwh,omitempty"`      // Overrides the 0.0004 t/kWh assumption
	MQTT                MQTTConfig      `yaml:"mqtt,omitempty"`
	HomeAssistant       HAConfig        `yaml:"home_assistant,omitempty"`
	Dashboard           DashboardConfig `yaml:"dashboard,omitempty"`
}

// MQTTConfig holds MQTT broker settings for publishing scenario results
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`                 // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // fallback: campus_energy
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://homeassistant.local:8123"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.campus_energy_scenario_savings"
}

// DashboardConfig holds settings for snapshots of the browser dashboard
type DashboardConfig struct {
	URL          string   `yaml:"url"`
	WaitSelector string   `yaml:"wait_selector,omitempty"` // CSS selector that marks the page as rendered
	Width        int      `yaml:"width,omitempty"`
	Height       int      `yaml:"height,omitempty"`
	Cookies      []Cookie `yaml:"cookies,omitempty"`
}

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `yaml:"name"`
	Value    string  `yaml:"value"`
	Domain   string  `yaml:"domain"`
	Path     string  `yaml:"path"`
	Expires  float64 `yaml:"expires,omitempty"`
	HTTPOnly bool    `yaml:"httpOnly,omitempty"`
	Secure   bool    `yaml:"secure,omitempty"`
	SameSite string  `yaml:"sameSite,omitempty"`
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// May contain tokens and passwords
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetBaselineUtility returns the utility used for the monthly baseline
func (c *Config) GetBaselineUtility() string {
	if c.BaselineUtility == "" {
		return "ELECTRICITY"
	}
	return c.BaselineUtility
}

// GetMaxPlausibleEUI returns the EUI above which a building is treated as a bad meter
func (c *Config) GetMaxPlausibleEUI() float64 {
	if c.MaxPlausibleEUI <= 0 {
		return 1000
	}
	return c.MaxPlausibleEUI
}

// GetFetchTimeout returns the HTTP timeout for fetching export files
func (c *Config) GetFetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// GetCostPerKWh returns the configured cost per kWh, or fallback if not set
func (c *Config) GetCostPerKWh(fallback float64) float64 {
	if c.CostPerKWh > 0 {
		return c.CostPerKWh
	}
	return fallback
}

// GetCO2TonsPerKWh returns the configured emissions factor, or fallback if not set
func (c *Config) GetCO2TonsPerKWh(fallback float64) float64 {
	if c.CO2TonsPerKWh > 0 {
		return c.CO2TonsPerKWh
	}
	return fallback
}

// GetTopicPrefix returns the MQTT topic prefix
func (m MQTTConfig) GetTopicPrefix() string {
	if m.TopicPrefix == "" {
		return "campus_energy"
	}
	return m.TopicPrefix
}

// GetViewport returns the snapshot viewport size with a 1440x900 default
func (d DashboardConfig) GetViewport() (int, int) {
	w, h := d.Width, d.Height
	if w <= 0 {
		w = 1440
	}
	if h <= 0 {
		h = 900
	}
	return w, h
}
