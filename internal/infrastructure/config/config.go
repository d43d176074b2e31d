package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for finitude.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	// Listeners maps a device name to its connection path.
	// Paths may be serial devices ("/dev/ttyUSB0", "serial:/dev/ttyUSB0?baud=38400")
	// or TCP endpoints ("tcp://rs485-bridge:4001", "rs485-bridge:4001").
	// An empty map means no devices are monitored; the metrics server still runs.
	Listeners map[string]string `yaml:"listeners"`

	Metrics MetricsConfig `yaml:"metrics"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
}

// MetricsConfig contains Prometheus exposition server settings.
type MetricsConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// MQTTConfig contains MQTT broker connection settings for the optional
// state-transition publisher.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FINITUDE_SECTION_KEY
// For example: FINITUDE_METRICS_PORT, FINITUDE_MQTT_HOST
//
// A missing file is an error; an empty file yields the defaults, which
// monitor zero devices on the default metrics port.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// Port 8000 matches the exporter's historical default.
func defaultConfig() *Config {
	return &Config{
		Metrics: MetricsConfig{
			Host: "0.0.0.0",
			Port: 8000,
			Path: "/metrics",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "finitude",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: FINITUDE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Metrics
	if v := os.Getenv("FINITUDE_METRICS_HOST"); v != "" {
		cfg.Metrics.Host = v
	}
	if v := os.Getenv("FINITUDE_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("FINITUDE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// MQTT
	if v := os.Getenv("FINITUDE_MQTT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.MQTT.Enabled = enabled
		}
	}
	if v := os.Getenv("FINITUDE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("FINITUDE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("FINITUDE_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("FINITUDE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("FINITUDE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Logging
	if v := os.Getenv("FINITUDE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FINITUDE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("FINITUDE_LOGGING_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		errs = append(errs, "metrics.port must be between 1 and 65535")
	}

	for name, path := range c.Listeners {
		if name == "" {
			errs = append(errs, "listeners: device name cannot be empty")
		}
		if path == "" {
			errs = append(errs, fmt.Sprintf("listeners.%s: connection path cannot be empty", name))
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReconnectInitialDelay returns the MQTT reconnect initial delay as a Duration.
func (c *Config) GetReconnectInitialDelay() time.Duration {
	return time.Duration(c.MQTT.Reconnect.InitialDelay) * time.Second
}

// GetReconnectMaxDelay returns the MQTT reconnect maximum delay as a Duration.
func (c *Config) GetReconnectMaxDelay() time.Duration {
	return time.Duration(c.MQTT.Reconnect.MaxDelay) * time.Second
}
