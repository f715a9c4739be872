package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/jgoulah/campusenergy/internal/config"
	"github.com/jgoulah/campusenergy/internal/log"
	"github.com/jgoulah/campusenergy/pkg/models"
)

const publishTimeout = 10 * time.Second

// Publisher sends scenario results to MQTT and/or Home Assistant
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	httpClient  *http.Client
}

// New creates a new publisher (supports both MQTT and HA HTTP API)
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig) (*Publisher, error) {
	if !mqttCfg.Enabled && !haCfg.Enabled {
		return nil, fmt.Errorf("neither MQTT nor Home Assistant is enabled in config")
	}

	// Validate HA config if enabled
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	var client mqtt.Client
	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(brokerURL(mqttCfg.Broker))
		opts.SetClientID("campusenergy-" + uuid.NewString()[:8])
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(false)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
	}

	return &Publisher{
		client:      client,
		topicPrefix: mqttCfg.GetTopicPrefix(),
		haConfig:    haCfg,
		httpClient:  &http.Client{Timeout: publishTimeout},
	}, nil
}

// Publish sends a scenario result to every enabled destination
func (p *Publisher) Publish(ctx context.Context, res models.ScenarioResult) error {
	if p.client != nil {
		if err := p.publishMQTT(ctx, res); err != nil {
			return err
		}
	}
	if p.haConfig.Enabled {
		if err := p.publishHA(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishMQTT(ctx context.Context, res models.ScenarioResult) error {
	msgs, err := Messages(p.topicPrefix, res)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		token := p.client.Publish(m.Topic, 1, true, m.Payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publishing %s: timed out", m.Topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing %s: %w", m.Topic, err)
		}
		log.Ctx(ctx).Debug("published", "topic", m.Topic, "payload", m.Payload)
	}
	return nil
}

// Message is a single retained MQTT message
type Message struct {
	Topic   string
	Payload string
}

// Messages returns one message per metric under <prefix>/<focus>/ plus the
// full result as JSON
func Messages(prefix string, res models.ScenarioResult) ([]Message, error) {
	base := strings.TrimSuffix(prefix, "/") + "/" + Slug(res.Focus.Name)
	metric := func(name string, v float64) Message {
		return Message{Topic: base + "/" + name, Payload: strconv.FormatFloat(v, 'f', -1, 64)}
	}

	msgs := []Message{
		metric("schedule_intensity", float64(res.ScheduleIntensity)),
		metric("ml_intensity", float64(res.MLIntensity)),
		metric("total_pct", round(res.TotalPct, 4)),
		metric("savings_kwh", round(res.SavingsEnergy, 1)),
		metric("cost_savings", round(res.CostSavings, 2)),
		metric("co2_savings_tons", round(res.CO2Savings, 3)),
		metric("peak_reduction_kw", round(res.PeakReductionKW, 1)),
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return append(msgs, Message{Topic: base + "/result", Payload: string(data)}), nil
}

// HAState is the body of a Home Assistant state update
type HAState struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// NewHAState builds the Home Assistant state for a result. The state is the
// energy saved; the other metrics are attributes.
func NewHAState(res models.ScenarioResult) HAState {
	return HAState{
		State: fmt.Sprintf("%.0f", res.SavingsEnergy),
		Attributes: map[string]any{
			"unit_of_measurement": "kWh",
			"device_class":        "energy",
			"friendly_name":       "Scenario savings (" + res.Focus.Name + ")",
			"focus":               res.Focus.Name,
			"focus_kind":          res.Focus.Kind,
			"schedule_intensity":  res.ScheduleIntensity,
			"ml_intensity":        res.MLIntensity,
			"total_pct":           round(res.TotalPct, 4),
			"cost_savings":        round(res.CostSavings, 2),
			"co2_savings_tons":    round(res.CO2Savings, 3),
			"peak_reduction_kw":   round(res.PeakReductionKW, 1),
			"monthly_optimized":   res.MonthlyOptimized,
		},
	}
}

func (p *Publisher) publishHA(ctx context.Context, res models.ScenarioResult) error {
	apiURL := fmt.Sprintf("%s/api/states/%s", strings.TrimSuffix(p.haConfig.URL, "/"), p.haConfig.EntityID)

	body, err := json.Marshal(NewHAState(res))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	// 201 on first creation of the entity, 200 afterwards
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	log.Ctx(ctx).Debug("updated Home Assistant state", "entity_id", p.haConfig.EntityID, "status", resp.StatusCode)
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a focus name into a topic segment
func Slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if s == "" {
		return "unknown"
	}
	return s
}

func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

func round(v float64, places int) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return f
}
