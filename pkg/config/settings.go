package config

import "time"

// DeviceSettings contains only device-level configuration
// Used for dependency injection to avoid coupling to full Config
type DeviceSettings struct {
	LocationID       string
	PollInterval     time.Duration
	PerfPollInterval time.Duration
	UseEmulator      bool
}

// NewDeviceSettings extracts device settings from full config
func NewDeviceSettings(cfg *Config) DeviceSettings {
	return DeviceSettings{
		LocationID:       cfg.Device.LocationID,
		PollInterval:     time.Duration(cfg.Device.PollInterval) * time.Second,
		PerfPollInterval: time.Duration(cfg.Device.PerfPollInterval) * time.Second,
		UseEmulator:      cfg.Device.UseEmulator,
	}
}

// RuleSettings contains only threshold-rule configuration
// Used for dependency injection to avoid coupling to full Config
type RuleSettings struct {
	Profile         Profile
	CO2Ceiling      float64
	TempCeiling     float64
	HumidityCeiling float64
	HvacTempFloor   float64
	HvacTempCeiling float64
}

// NewRuleSettings extracts rule settings from full config
func NewRuleSettings(cfg *Config) RuleSettings {
	return RuleSettings{
		Profile:         cfg.RuleProfile(),
		CO2Ceiling:      cfg.Rules.CO2Ceiling,
		TempCeiling:     cfg.Rules.TempCeiling,
		HumidityCeiling: cfg.Rules.HumidityCeiling,
		HvacTempFloor:   cfg.Rules.HvacTempFloor,
		HvacTempCeiling: cfg.Rules.HvacTempCeiling,
	}
}

// MQTTSettings contains only MQTT-specific configuration
// Used for dependency injection to avoid coupling to full Config
type MQTTSettings struct {
	Broker       string
	Port         int
	Username     string
	Password     string
	ClientID     string
	RetryDelay   int
	KeepAlive    int
	QoS          byte
	TopicPrefix  string
	CommandTopic string
	StatusTopic  string
}

// NewMQTTSettings extracts MQTT settings from full config
func NewMQTTSettings(cfg *Config) MQTTSettings {
	return MQTTSettings{
		Broker:       cfg.MQTT.Broker,
		Port:         cfg.MQTT.Port,
		Username:     cfg.MQTT.Username,
		Password:     cfg.MQTT.Password,
		ClientID:     cfg.MQTT.ClientID,
		RetryDelay:   cfg.MQTT.RetryDelay,
		KeepAlive:    cfg.MQTT.KeepAlive,
		QoS:          cfg.MQTT.QoS,
		TopicPrefix:  cfg.MQTT.TopicPrefix,
		CommandTopic: cfg.MQTT.CommandTopic,
		StatusTopic:  cfg.MQTT.StatusTopic,
	}
}

// CoAPSettings contains only CoAP-specific configuration
// Used for dependency injection to avoid coupling to full Config
type CoAPSettings struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// NewCoAPSettings extracts CoAP settings from full config
func NewCoAPSettings(cfg *Config) CoAPSettings {
	return CoAPSettings{
		Host:    cfg.CoAP.Host,
		Port:    cfg.CoAP.Port,
		Timeout: time.Duration(cfg.CoAP.Timeout) * time.Second,
	}
}
