package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StoreDriverSupabase, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.MarksPerEntry)
	assert.Equal(t, 1000, cfg.GeocodeRadiusM)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "dynamodb")
	t.Setenv("MARKS_PER_ENTRY", "5")
	t.Setenv("ENABLE_EVENTS", "true")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, StoreDriverDynamoDB, cfg.StoreDriver)
	assert.Equal(t, 5, cfg.MarksPerEntry)
	assert.True(t, cfg.EnableEvents)
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestValidate_RejectsZeroCapacity(t *testing.T) {
	t.Setenv("MARKS_PER_ENTRY", "0")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestValidate_ProductionRequiresSupabaseCredentials(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "supabase")

	_, err := LoadConfig()

	assert.Error(t, err)
}
