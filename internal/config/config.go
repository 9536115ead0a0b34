package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Log     LogConfig
	Routing RoutingConfig
	Asset   AssetConfig
	Render  RenderConfig
	Worker  WorkerConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	RouteCacheTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// RoutingConfig - настройки TomTom Routing API
type RoutingConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

// AssetConfig - каталог с GPX файлами и имя файла по умолчанию
type AssetConfig struct {
	Dir     string
	Default string
}

type RenderConfig struct {
	ZoomPadding int
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	BatchSize     int
}

var defaults = map[string]interface{}{
	"API_HOST":                "0.0.0.0",
	"API_PORT":                8080,
	"API_ENV":                 "development",
	"API_READ_TIMEOUT":        10,
	"API_WRITE_TIMEOUT":       60,
	"REDIS_ENABLED":           false,
	"REDIS_HOST":              "localhost",
	"REDIS_PORT":              6379,
	"REDIS_DB":                0,
	"ROUTE_CACHE_TTL":         3600,
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
	"ROUTING_BASE_URL":        "https://api.tomtom.com",
	"ROUTING_REQUEST_TIMEOUT": 30,
	"ASSET_DIR":               "./assets",
	"ASSET_DEFAULT":           "Lodz.gpx",
	"RENDER_ZOOM_PADDING":     100,
	"WORKER_ENABLED":          false,
	"WORKER_CONSUMER_GROUP":   "route-reconstruct-workers",
	"WORKER_BATCH_SIZE":       10,
}

// Load читает конфигурацию из .env (если есть), переменных окружения
// и, для CLI, из флагов. Флаги имеют наивысший приоритет.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("API_HOST"),
			Port:         v.GetInt("API_PORT"),
			Env:          v.GetString("API_ENV"),
			ReadTimeout:  time.Duration(v.GetInt("API_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("API_WRITE_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			RouteCacheTTL: time.Duration(v.GetInt("ROUTE_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Routing: RoutingConfig{
			BaseURL:        v.GetString("ROUTING_BASE_URL"),
			APIKey:         v.GetString("ROUTING_API_KEY"),
			RequestTimeout: time.Duration(v.GetInt("ROUTING_REQUEST_TIMEOUT")) * time.Second,
		},
		Asset: AssetConfig{
			Dir:     v.GetString("ASSET_DIR"),
			Default: v.GetString("ASSET_DEFAULT"),
		},
		Render: RenderConfig{
			ZoomPadding: v.GetInt("RENDER_ZOOM_PADDING"),
		},
		Worker: WorkerConfig{
			Enabled:       v.GetBool("WORKER_ENABLED"),
			ConsumerGroup: v.GetString("WORKER_CONSUMER_GROUP"),
			BatchSize:     v.GetInt("WORKER_BATCH_SIZE"),
		},
	}

	return cfg, nil
}

// flagKeys - соответствие флагов CLI ключам конфигурации
var flagKeys = map[string]string{
	"asset":       "ASSET_DEFAULT",
	"asset-dir":   "ASSET_DIR",
	"log-level":   "LOG_LEVEL",
	"api-key":     "ROUTING_API_KEY",
	"routing-url": "ROUTING_BASE_URL",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return nil
}

// Validate проверяет то, без чего сервис не сможет построить маршрут
func (c *Config) Validate() error {
	if c.Routing.APIKey == "" {
		return fmt.Errorf("ROUTING_API_KEY is required")
	}
	if c.Routing.BaseURL == "" {
		return fmt.Errorf("ROUTING_BASE_URL is required")
	}
	if c.Asset.Dir == "" {
		return fmt.Errorf("ASSET_DIR is required")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
