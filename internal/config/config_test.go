package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:       "5000",
		Env:        "development",
		DBDriver:   "postgres",
		DBPassword: "secure-password",
		DBSSLMode:  "require",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		BcryptCost: 12,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DBDriver = "sqlite"
	c.DBPath = "stackit.db"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateDriver(t *testing.T) {
	c := validConfig()
	c.DBDriver = "mysql"
	assert.Error(t, c.Validate())

	c.DBDriver = "sqlite"
	c.DBPath = ""
	assert.Error(t, c.Validate())

	c.DBPath = ":memory:"
	assert.NoError(t, c.Validate())
}

func TestConfig_ValidateRanges(t *testing.T) {
	c := validConfig()
	c.BcryptCost = 2
	assert.Error(t, c.Validate())

	c = validConfig()
	c.TracingSampleRatio = 1.5
	assert.Error(t, c.Validate())
}

func TestConfig_Helpers(t *testing.T) {
	c := validConfig()
	assert.Equal(t, 7*24*time.Hour, c.TokenTTL())
	c.JWTTTLHours = 2
	assert.Equal(t, 2*time.Hour, c.TokenTTL())

	c.AllowedOrigins = " http://a.test , ,http://b.test"
	assert.Equal(t, "http://a.test,http://b.test", c.Origins())

	assert.False(t, c.IsProduction())
	c.Env = "prod"
	assert.True(t, c.IsProduction())
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "test-secret-that-is-long-enough-for-checks")
	_ = os.Unsetenv("PORT")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.ReputationEnabled)
	assert.Equal(t, "test-secret-that-is-long-enough-for-checks", cfg.JWTSecret)
}
