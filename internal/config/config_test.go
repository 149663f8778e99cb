package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 7, cfg.MaxExtensionDays)
	assert.Equal(t, 2, cfg.SoonOverdueDays)
	assert.Equal(t, "admin", cfg.AdminRole)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "0 0 7 * * *", cfg.ReminderSchedule)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PROD_ORIGINS", "https://grabby.example")
	t.Setenv("MAX_EXTENSION_DAYS", "3")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("REMINDER_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction)
	assert.Equal(t, 3, cfg.MaxExtensionDays)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.ReminderSchedule)
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("ProdWithoutOrigins", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("APP_ENV", "prod")
		t.Setenv("PROD_ORIGINS", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("BadInt", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("MAX_EXTENSION_DAYS", "seven")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("ZeroCap", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("MAX_EXTENSION_DAYS", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("BadDuration", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("CACHE_TTL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}
