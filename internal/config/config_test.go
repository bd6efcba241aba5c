package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "KSh", cfg.Clinic.Currency)
	assert.Equal(t, "Africa/Nairobi", cfg.Clinic.Timezone)
	assert.Equal(t, []string{"Tassia-Magic Square", "Machakos", "Tassia-Hill"}, cfg.Clinic.Locations)
	assert.Contains(t, cfg.Database.DSN, "parseTime=True")
	assert.Equal(t, 15, cfg.JWTExpirationMinutes)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CLINIC_LOCATIONS", " Nairobi CBD , Westlands ")
	t.Setenv("JWT_REFRESH_EXPIRATION_HOURS", "24")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"Nairobi CBD", "Westlands"}, cfg.Clinic.Locations)
	assert.Equal(t, 24, cfg.JWTRefreshExpirationHours)
}

func TestLoadConfigInvalidExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_MINUTES", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestIsValidLocation(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsValidLocation("Machakos"))
	assert.False(t, cfg.IsValidLocation("Mombasa"))
}
