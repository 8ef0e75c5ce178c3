package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort          int           `mapstructure:"APP_PORT"`
	DatabasePath     string        `mapstructure:"DATABASE_PATH"`
	StoreDriver      string        `mapstructure:"STORE_DRIVER"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	UpstreamURL      string        `mapstructure:"UPSTREAM_URL"`
	StreamTimeout    time.Duration `mapstructure:"STREAM_TIMEOUT"`
	WebSearchDefault bool          `mapstructure:"WEB_SEARCH_DEFAULT"`
	SanitizeHTML     bool          `mapstructure:"SANITIZE_HTML"`
	StaticDir        string        `mapstructure:"STATIC_DIR"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

// Store drivers accepted in STORE_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "/data/flow.db")
	viper.SetDefault("STORE_DRIVER", DriverSQLite)
	viper.SetDefault("REDIS_ADDR", "redis:6379")
	viper.SetDefault("UPSTREAM_URL", "http://localhost:8000/api/chat")
	viper.SetDefault("STREAM_TIMEOUT", "0s")
	viper.SetDefault("WEB_SEARCH_DEFAULT", false)
	viper.SetDefault("SANITIZE_HTML", false)
	viper.SetDefault("STATIC_DIR", "./frontend/dist")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return unmarshal()
}

// Watch re-reads the config file whenever it changes on disk and hands the
// result to onChange. It does nothing when no config file was found.
func Watch(onChange func(*Config)) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := unmarshal()
		if err != nil {
			slog.Error("Failed to reload configuration", "file", e.Name, "error", err)
			return
		}
		slog.Info("Configuration reloaded", "file", e.Name, "op", e.Op.String())
		onChange(cfg)
	})
	viper.WatchConfig()
}

func unmarshal() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	return &cfg, nil
}
