package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration: environment variables cover the
// deployment-facing knobs, and an optional YAML file pointed at by
// CONFIG_PATH overrides the transport tunables.
type Config struct {
	Port              string
	DefaultMaxPlayers int
	LogLevel          string

	RateCapacity        float64
	RateRefillPerSec    float64
	HeartbeatSeconds    int
	SendBuffer          int
	MaxMessageBytes     int64
	WriteTimeoutSeconds int
}

// Capacity bounds for DEFAULT_MAX_PLAYERS; values outside are clamped.
const (
	minCapacity = 2
	maxCapacity = 8
)

// fileConfig mirrors the YAML layout. Pointer fields distinguish "absent"
// from zero so the file only overrides what it mentions.
type fileConfig struct {
	Rate struct {
		Capacity     *float64 `yaml:"capacity"`
		RefillPerSec *float64 `yaml:"refillPerSec"`
	} `yaml:"rate"`
	Heartbeat struct {
		IntervalSeconds *int `yaml:"intervalSeconds"`
	} `yaml:"heartbeat"`
	Connection struct {
		SendBuffer          *int   `yaml:"sendBuffer"`
		MaxMessageBytes     *int64 `yaml:"maxMessageBytes"`
		WriteTimeoutSeconds *int   `yaml:"writeTimeoutSeconds"`
	} `yaml:"connection"`
}

// Load builds the configuration from defaults, environment variables and the
// optional YAML overlay, in that order.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "3000"),
		DefaultMaxPlayers: getEnvAsInt("DEFAULT_MAX_PLAYERS", 4),
		LogLevel:          getEnv("LOG_LEVEL", "info"),

		RateCapacity:        10,
		RateRefillPerSec:    5,
		HeartbeatSeconds:    30,
		SendBuffer:          256,
		MaxMessageBytes:     4096,
		WriteTimeoutSeconds: 10,
	}

	if cfg.DefaultMaxPlayers < minCapacity {
		cfg.DefaultMaxPlayers = minCapacity
	}
	if cfg.DefaultMaxPlayers > maxCapacity {
		cfg.DefaultMaxPlayers = maxCapacity
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Rate.Capacity != nil {
		c.RateCapacity = *fc.Rate.Capacity
	}
	if fc.Rate.RefillPerSec != nil {
		c.RateRefillPerSec = *fc.Rate.RefillPerSec
	}
	if fc.Heartbeat.IntervalSeconds != nil {
		c.HeartbeatSeconds = *fc.Heartbeat.IntervalSeconds
	}
	if fc.Connection.SendBuffer != nil {
		c.SendBuffer = *fc.Connection.SendBuffer
	}
	if fc.Connection.MaxMessageBytes != nil {
		c.MaxMessageBytes = *fc.Connection.MaxMessageBytes
	}
	if fc.Connection.WriteTimeoutSeconds != nil {
		c.WriteTimeoutSeconds = *fc.Connection.WriteTimeoutSeconds
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
