package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DEVCONNECTOR_SERVER_PORT", "")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEVCONNECTOR_SERVER_PORT", "9000")
	t.Setenv("DEVCONNECTOR_REDIS_ADDR", "localhost:6379")
	t.Setenv("DEVCONNECTOR_REDIS_DB", "2")
	t.Setenv("DEVCONNECTOR_AUTH_JWTSECRET", "s3cret")
	t.Setenv("DEVCONNECTOR_SERVER_SHUTDOWNTIMEOUT", "3s")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.CacheEnabled())
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("DEVCONNECTOR_SERVER_PORT", "")
	t.Setenv("PORT", "8081")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Server.Port)
}
