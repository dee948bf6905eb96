package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:                  "production",
			Port:                 "8000",
			JWTSecret:            "secure-secret-at-least-32-chars-long",
			DBDriver:             "postgres",
			DBPassword:           "secure-password",
			DBSSLMode:            "require",
			ImageMaxUploadSizeMB: 10,
			TracingSamplerRatio:  1,
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid production", func(_ *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"default secret in production", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"short secret in production", func(c *Config) { c.JWTSecret = "short" }, true},
		{"weak db password in production", func(c *Config) { c.DBPassword = "password" }, true},
		{"ssl disabled in production", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"sqlite in production skips db checks", func(c *Config) {
			c.DBDriver = "sqlite"
			c.DBPassword = ""
			c.DBSSLMode = ""
		}, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"negative upload size", func(c *Config) { c.ImageMaxUploadSizeMB = -1 }, true},
		{"sampler ratio out of range", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
		{"development with short secret", func(c *Config) {
			c.Env = "development"
			c.JWTSecret = "dev"
			c.DBSSLMode = "disable"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("PORT", "9100")
	t.Setenv("MEDIA_ROOT", "/tmp/pantry-media")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "9100", c.Port)
	assert.Equal(t, "/tmp/pantry-media", c.MediaRoot)
	assert.Equal(t, "/media/", c.MediaURL)
	assert.Equal(t, 10, c.ImageMaxUploadSizeMB)
	assert.False(t, c.IsProduction())
}
