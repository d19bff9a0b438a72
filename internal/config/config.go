package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "DEVCONNECTOR"

// Config holds application level configuration loaded from env and an optional config file.
type Config struct {
	Server struct {
		Port            string
		ShutdownTimeout time.Duration
	}
	MySQL struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Auth struct {
		JWTSecret string
	}
	Log struct {
		Level  string
		Format string
	}
	Web struct {
		Dir string
	}
	Swagger struct {
		Host string
	}
}

// Load builds Config from environment variables (DEVCONNECTOR_ prefix), an optional
// config file in the working directory and defaults.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "5000")
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("mysql.dsn", "user:password@tcp(localhost:3306)/devconnector?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwtsecret", "change-me")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("web.dir", "")
	v.SetDefault("swagger.host", "")

	// PORT is what most hosting platforms inject.
	if err := v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind server port: %w", err)
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}
