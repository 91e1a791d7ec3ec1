package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	OpenWeatherMap struct {
		APIKey  string        `mapstructure:"api_key"`
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"openweathermap"`

	Storage struct {
		Driver    string `mapstructure:"driver"` // file, sqlite, redis or memory
		Path      string `mapstructure:"path"`
		RedisAddr string `mapstructure:"redis_addr"`
		RedisDB   int    `mapstructure:"redis_db"`
	} `mapstructure:"storage"`

	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// EnvPrefix prefixes every environment override, e.g. WEATHER_STORAGE_DRIVER
const EnvPrefix = "WEATHER"

// ErrMissingAPIKey is returned by Validate when no OpenWeatherMap key is set
var ErrMissingAPIKey = errors.New("no OpenWeatherMap API key provided (set WEATHER_OPENWEATHERMAP_API_KEY or OPENWEATHER_API_KEY)")

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("openweathermap.api_key", "")
	v.SetDefault("openweathermap.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweathermap.timeout", 10*time.Second)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "") // resolved per driver by Load
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
}

// Load reads .env (if present), then the optional config file at path, then
// WEATHER_* environment variables. Values already bound on v (cobra flags)
// take precedence over all of them.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.OpenWeatherMap.APIKey == "" {
		cfg.OpenWeatherMap.APIKey = os.Getenv("OPENWEATHER_API_KEY")
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath(cfg.Storage.Driver)
	}

	return &cfg, nil
}

// Validate checks what every command needs before talking to the provider
func (c *Config) Validate() error {
	if c.OpenWeatherMap.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// DefaultStoragePath is where favorites live when storage.path is unset:
// storage.db for the sqlite driver, storage.json otherwise.
func DefaultStoragePath(driver string) string {
	name := "storage.json"
	if driver == "sqlite" {
		name = "storage.db"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "weather-widget-" + name
	}
	return filepath.Join(dir, "weather-widget", name)
}
