package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures configuration for the planner CLI and engine.
type Config struct {
	// SQLiteDSN locates the planner database.
	SQLiteDSN string
	// Timezone is the single reference timezone all wall-clock computation
	// happens in.
	Timezone string
	// DefaultAvailableHoursPerWeek is used for users with no stored
	// settings row.
	DefaultAvailableHoursPerWeek float64
	LogLevel                     string
}

// fileConfig mirrors the optional YAML configuration file.
type fileConfig struct {
	SQLiteDSN             string   `yaml:"sqlite_dsn"`
	Timezone              string   `yaml:"timezone"`
	AvailableHoursPerWeek *float64 `yaml:"available_hours_per_week"`
	LogLevel              string   `yaml:"log_level"`
}

// Load parses configuration from an optional YAML file and the process
// environment. Environment variables override file values; defaults cover
// the rest. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Config{
		SQLiteDSN:                    "file:planner.db",
		Timezone:                     "Local",
		DefaultAvailableHoursPerWeek: 112,
		LogLevel:                     "info",
	}

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("PLANNER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tz := strings.TrimSpace(os.Getenv("PLANNER_TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}

	if hoursValue := strings.TrimSpace(os.Getenv("PLANNER_AVAILABLE_HOURS")); hoursValue != "" {
		hours, err := strconv.ParseFloat(hoursValue, 64)
		if err != nil || hours < 0 {
			invalid = append(invalid, "PLANNER_AVAILABLE_HOURS")
		} else {
			cfg.DefaultAvailableHoursPerWeek = hours
		}
	}

	if level := strings.TrimSpace(os.Getenv("PLANNER_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if _, err := cfg.Location(); err != nil {
		invalid = append(invalid, "PLANNER_TIMEZONE")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if file.SQLiteDSN != "" {
		cfg.SQLiteDSN = file.SQLiteDSN
	}
	if file.Timezone != "" {
		cfg.Timezone = file.Timezone
	}
	if file.AvailableHoursPerWeek != nil {
		if *file.AvailableHoursPerWeek < 0 {
			return fmt.Errorf("config file %s: available_hours_per_week must not be negative", path)
		}
		cfg.DefaultAvailableHoursPerWeek = *file.AvailableHoursPerWeek
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	return nil
}

// Location resolves the configured timezone name.
func (c Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	default:
		return time.LoadLocation(c.Timezone)
	}
}
