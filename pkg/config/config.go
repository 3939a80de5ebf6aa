package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"iot-edge-controller/pkg/logger"
)

// Config represents the complete application configuration
// Loaded once at startup and passed by ownership into each component
type Config struct {
	Device  DeviceConfig         `yaml:"device"`
	Rules   RulesConfig          `yaml:"rules"`
	Sensors SensorsConfig        `yaml:"sensors"`
	MQTT    MQTTConfig           `yaml:"mqtt"`
	CoAP    CoAPConfig           `yaml:"coap"`
	Metrics MetricsConfig        `yaml:"metrics"`
	Logging logger.LoggingConfig `yaml:"logging"`
}

// DeviceConfig contains device-level settings
type DeviceConfig struct {
	LocationID       string `yaml:"location_id"`
	PollInterval     int    `yaml:"poll_interval"`      // Sensor poll interval in seconds
	PerfPollInterval int    `yaml:"perf_poll_interval"` // Performance poll interval in seconds (defaults to poll_interval)
	EnableSensing    bool   `yaml:"enable_sensing"`
	EnableSystemPerf bool   `yaml:"enable_system_perf"`
	UseEmulator      bool   `yaml:"use_emulator"`
	RunForever       bool   `yaml:"run_forever"`
	RunDuration      int    `yaml:"run_duration"` // Seconds to run when run_forever is false
}

// Profile identifies which threshold-rule family is active. Exactly one
// family fires per deployment; the two enable flags are resolved here.
type Profile int

const (
	ProfileNone Profile = iota
	ProfileEnvironment
	ProfileHVAC
)

// String returns the string representation of the profile
func (p Profile) String() string {
	switch p {
	case ProfileEnvironment:
		return "environment"
	case ProfileHVAC:
		return "hvac"
	default:
		return "none"
	}
}

// RulesConfig contains threshold-rule settings. The two handle_* flags select
// the rule family; if both are set, the environment profile wins.
type RulesConfig struct {
	HandleEnvironment bool    `yaml:"handle_environment"` // CO2/temp ventilation + humidity purifier rules
	HandleTempChange  bool    `yaml:"handle_temp_change"` // Legacy HVAC floor/ceiling rules
	CO2Ceiling        float64 `yaml:"co2_ceiling"`
	TempCeiling       float64 `yaml:"temp_ceiling"`
	HumidityCeiling   float64 `yaml:"humidity_ceiling"`
	HvacTempFloor     float64 `yaml:"hvac_temp_floor"`
	HvacTempCeiling   float64 `yaml:"hvac_temp_ceiling"`
}

// SensorRange bounds the values a simulated sensor produces
type SensorRange struct {
	Floor   float64 `yaml:"floor"`
	Ceiling float64 `yaml:"ceiling"`
}

// SensorsConfig contains per-sensor simulation ranges
type SensorsConfig struct {
	Temperature SensorRange `yaml:"temperature"`
	Humidity    SensorRange `yaml:"humidity"`
	Pressure    SensorRange `yaml:"pressure"`
	CO2         SensorRange `yaml:"co2"`
}

// MQTTConfig contains MQTT upstream channel settings
type MQTTConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Broker       string `yaml:"broker"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	ClientID     string `yaml:"client_id"`
	RetryDelay   int    `yaml:"retry_delay"` // Delay between connection retries in milliseconds
	KeepAlive    int    `yaml:"keep_alive"`  // Keep-alive in seconds
	QoS          byte   `yaml:"qos"`
	TopicPrefix  string `yaml:"topic_prefix"`
	CommandTopic string `yaml:"command_topic"` // Inbound actuator command topic
	StatusTopic  string `yaml:"status_topic"`  // Availability topic (LWT)
}

// CoAPConfig contains CoAP upstream channel settings
type CoAPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Timeout int    `yaml:"timeout"` // Per-request timeout in seconds
}

// MetricsConfig contains Prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// DefaultPollInterval is used when device.poll_interval is unset
const DefaultPollInterval = 5

// Default rule thresholds
const (
	DefaultCO2Ceiling      = 1000.0
	DefaultTempCeiling     = 26.0
	DefaultHumidityCeiling = 60.0
	DefaultHvacTempFloor   = 18.0
	DefaultHvacTempCeiling = 20.0
)

// LoadConfig loads configuration from the specified file, falling back to
// well-known locations when no path is given
func LoadConfig(configPath string) (*Config, error) {
	paths := []string{
		configPath,
		"/etc/iot-edge-controller/config.yaml",
		"/etc/iot-edge-controller.yaml",
		"./config.yaml",
	}

	var data []byte
	var err error
	var usedPath string

	for _, path := range paths {
		if path == "" {
			continue
		}
		// #nosec G304 - Paths are from a hardcoded list of safe configuration file locations
		data, err = os.ReadFile(path)
		if err == nil {
			usedPath = path
			break
		}
	}

	if err != nil {
		return nil, fmt.Errorf("cannot read configuration file from any of the locations: %v. Last error: %w", paths, err)
	}

	cfg, err := LoadConfigFromString(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", usedPath, err)
	}

	logger.LogInfo("✅ Configuration loaded successfully from %s", usedPath)
	return cfg, nil
}

// LoadConfigFromString loads configuration from a YAML string (for testing)
func LoadConfigFromString(yamlContent string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(yamlContent), &config); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDefaults fills unset values with their documented defaults
func (c *Config) applyDefaults() {
	if c.Device.PollInterval <= 0 {
		c.Device.PollInterval = DefaultPollInterval
	}
	if c.Device.PerfPollInterval <= 0 {
		c.Device.PerfPollInterval = c.Device.PollInterval
	}
	if c.Rules.CO2Ceiling == 0 {
		c.Rules.CO2Ceiling = DefaultCO2Ceiling
	}
	if c.Rules.TempCeiling == 0 {
		c.Rules.TempCeiling = DefaultTempCeiling
	}
	if c.Rules.HumidityCeiling == 0 {
		c.Rules.HumidityCeiling = DefaultHumidityCeiling
	}
	if c.Rules.HvacTempFloor == 0 {
		c.Rules.HvacTempFloor = DefaultHvacTempFloor
	}
	if c.Rules.HvacTempCeiling == 0 {
		c.Rules.HvacTempCeiling = DefaultHvacTempCeiling
	}
	if c.CoAP.Timeout <= 0 {
		c.CoAP.Timeout = 10
	}
	if c.MQTT.KeepAlive <= 0 {
		c.MQTT.KeepAlive = 60
	}
	if c.Metrics.Port <= 0 {
		c.Metrics.Port = 9100
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Device.LocationID == "" {
		return fmt.Errorf("device.location_id is not specified")
	}
	if c.Device.PollInterval <= 0 {
		return fmt.Errorf("device.poll_interval must be positive")
	}
	if !c.Device.RunForever && c.Device.RunDuration <= 0 {
		return fmt.Errorf("device.run_duration must be positive when run_forever is false")
	}
	if c.Rules.HvacTempFloor > c.Rules.HvacTempCeiling {
		return fmt.Errorf("rules.hvac_temp_floor must not exceed rules.hvac_temp_ceiling")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is not specified")
		}
		if c.MQTT.Port <= 0 {
			return fmt.Errorf("mqtt.port must be positive")
		}
		if c.MQTT.ClientID == "" {
			return fmt.Errorf("mqtt.client_id is not specified")
		}
	}
	if c.CoAP.Enabled {
		if c.CoAP.Host == "" {
			return fmt.Errorf("coap.host is not specified")
		}
		if c.CoAP.Port <= 0 {
			return fmt.Errorf("coap.port must be positive")
		}
	}
	return nil
}

// RuleProfile resolves the two rule-family flags into an explicit profile.
// The environment profile wins when both flags are set.
func (c *Config) RuleProfile() Profile {
	if c.Rules.HandleEnvironment && c.Rules.HandleTempChange {
		logger.LogWarn("⚠️ Both rule families enabled; using environment profile only")
		return ProfileEnvironment
	}
	if c.Rules.HandleEnvironment {
		return ProfileEnvironment
	}
	if c.Rules.HandleTempChange {
		return ProfileHVAC
	}
	return ProfileNone
}
