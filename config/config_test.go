package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("JWT_TTL_HOURS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/plans.db")
	t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("SALT_ROUND", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/plans.db", cfg.SQLitePath)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.SaltRound)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestValidateTimezone(t *testing.T) {
	cfg := &Config{DBDriver: "sqlite", Timezone: "Mars/Olympus", RequestTimeout: time.Second}
	assert.Error(t, cfg.Validate())
}
