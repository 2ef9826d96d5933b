package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	// t.Setenv forbids parallel subtests.

	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, name := range []string{"PLANNER_SQLITE_DSN", "PLANNER_TIMEZONE", "PLANNER_AVAILABLE_HOURS", "PLANNER_LOG_LEVEL"} {
			t.Setenv(name, "")
		}
	}

	t.Run("defaults apply without file or environment", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "file:planner.db", cfg.SQLiteDSN)
		assert.Equal(t, "Local", cfg.Timezone)
		assert.Equal(t, 112.0, cfg.DefaultAvailableHoursPerWeek)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		clearEnv(t)
		path := writeConfigFile(t, `
sqlite_dsn: file:/var/lib/planner/data.db
timezone: UTC
available_hours_per_week: 84
log_level: debug
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "file:/var/lib/planner/data.db", cfg.SQLiteDSN)
		assert.Equal(t, "UTC", cfg.Timezone)
		assert.Equal(t, 84.0, cfg.DefaultAvailableHoursPerWeek)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		clearEnv(t)
		path := writeConfigFile(t, `
sqlite_dsn: file:from-file.db
log_level: debug
`)
		t.Setenv("PLANNER_SQLITE_DSN", "file:from-env.db")
		t.Setenv("PLANNER_AVAILABLE_HOURS", "56.5")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "file:from-env.db", cfg.SQLiteDSN)
		assert.Equal(t, 56.5, cfg.DefaultAvailableHoursPerWeek)
		// Untouched by the environment, so the file value stands.
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("a partial file keeps the remaining defaults", func(t *testing.T) {
		clearEnv(t)
		path := writeConfigFile(t, `timezone: UTC`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "UTC", cfg.Timezone)
		assert.Equal(t, "file:planner.db", cfg.SQLiteDSN)
		assert.Equal(t, 112.0, cfg.DefaultAvailableHoursPerWeek)
	})

	t.Run("a missing file fails", func(t *testing.T) {
		clearEnv(t)

		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		clearEnv(t)
		path := writeConfigFile(t, "sqlite_dsn: [unterminated")

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("negative hours in the file fail", func(t *testing.T) {
		clearEnv(t)
		path := writeConfigFile(t, "available_hours_per_week: -5")

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid environment values are collected by name", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLANNER_AVAILABLE_HOURS", "not-a-number")
		t.Setenv("PLANNER_TIMEZONE", "Mars/Olympus_Mons")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PLANNER_AVAILABLE_HOURS")
		assert.Contains(t, err.Error(), "PLANNER_TIMEZONE")
	})

	t.Run("negative hours in the environment are rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLANNER_AVAILABLE_HOURS", "-1")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PLANNER_AVAILABLE_HOURS")
	})
}

func TestConfig_Location(t *testing.T) {
	t.Parallel()

	t.Run("empty and Local resolve to the process timezone", func(t *testing.T) {
		t.Parallel()

		for _, tz := range []string{"", "Local"} {
			loc, err := Config{Timezone: tz}.Location()
			require.NoError(t, err)
			assert.Equal(t, time.Local, loc)
		}
	})

	t.Run("UTC resolves without a zone lookup", func(t *testing.T) {
		t.Parallel()

		loc, err := Config{Timezone: "UTC"}.Location()
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("IANA names resolve through the zone database", func(t *testing.T) {
		t.Parallel()

		loc, err := Config{Timezone: "Europe/Berlin"}.Location()
		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", loc.String())
	})

	t.Run("unknown names fail", func(t *testing.T) {
		t.Parallel()

		_, err := Config{Timezone: "Nowhere/Void"}.Location()
		assert.Error(t, err)
	})
}
