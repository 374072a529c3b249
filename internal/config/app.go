package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultCountriesAPIURL    = "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"
	DefaultExchangeRateAPIURL = "https://open.er-api.com/v6/latest/USD"

	minClientTimeoutSeconds = 1
	maxClientTimeoutSeconds = 15
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable pool_max_conns=10",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type CountriesAPI struct {
	URL string `mapstructure:"url"`
}

type ExchangeRateAPI struct {
	URL string `mapstructure:"url"`
}

type Cache struct {
	Driver        string `mapstructure:"driver"`
	MaxItems      int64  `mapstructure:"max_items"`
	TTLSeconds    int    `mapstructure:"ttl_seconds"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
}

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
	CacheDriverNone   = "none"
)

type Render struct {
	ImagePath string `mapstructure:"image_path"`
}

type Scheduler struct {
	Enabled     bool `mapstructure:"enabled"`
	IntervalSec int  `mapstructure:"interval_sec"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type GDP struct {
	Seed uint64 `mapstructure:"seed"`
}

type AppConfig struct {
	HTTPServer      HTTPServer      `mapstructure:"http_server"`
	DbServer        DbServer        `mapstructure:"db_server"`
	HTTPClient      HTTPClient      `mapstructure:"http_client"`
	CountriesAPI    CountriesAPI    `mapstructure:"countries_api"`
	ExchangeRateAPI ExchangeRateAPI `mapstructure:"exchange_rate_api"`
	Cache           Cache           `mapstructure:"cache"`
	Render          Render          `mapstructure:"render"`
	Scheduler       Scheduler       `mapstructure:"scheduler"`
	Logging         Logging         `mapstructure:"logging"`
	GDP             GDP             `mapstructure:"gdp"`
}

// Init loads .env and config.yaml from the working directory. Both files are optional.
func Init() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return Load("config.yaml")
}

// Load reads configFile (skipped when missing), applies defaults and env overrides.
func Load(configFile string) (*AppConfig, error) {
	var cfg AppConfig
	v := viper.New()

	if _, statErr := os.Stat(configFile); statErr == nil {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetDefault("http_server.port", "8080")
	v.SetDefault("db_server.host", "localhost")
	v.SetDefault("db_server.port", "5432")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("countries_api.url", DefaultCountriesAPIURL)
	v.SetDefault("exchange_rate_api.url", DefaultExchangeRateAPIURL)
	v.SetDefault("cache.driver", CacheDriverMemory)
	v.SetDefault("cache.max_items", 1024)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("render.image_path", "storage/cache/summary.png")
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval_sec", 3600)
	v.SetDefault("logging.level", "info")
	v.SetDefault("gdp.seed", 0)

	// http server env vars
	_ = v.BindEnv("http_server.port", "PORT")

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = v.BindEnv("countries_api.url", "COUNTRIES_API_URL")
	_ = v.BindEnv("exchange_rate_api.url", "EXCHANGE_RATE_API_URL")

	// cache env vars
	_ = v.BindEnv("cache.driver", "CACHE_DRIVER")
	_ = v.BindEnv("cache.max_items", "CACHE_MAX_ITEMS")
	_ = v.BindEnv("cache.ttl_seconds", "CACHE_TTL_SECONDS")
	_ = v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis_password", "REDIS_PASSWORD")

	_ = v.BindEnv("render.image_path", "SUMMARY_IMAGE_PATH")
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.interval_sec", "SCHEDULER_INTERVAL_SEC")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("gdp.seed", "GDP_SEED")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.HTTPClient.TimeoutSeconds = min(max(cfg.HTTPClient.TimeoutSeconds, minClientTimeoutSeconds), maxClientTimeoutSeconds)

	switch cfg.Cache.Driver {
	case CacheDriverMemory, CacheDriverNone:
	case CacheDriverRedis:
		if cfg.Cache.RedisAddr == "" {
			return nil, fmt.Errorf("cache.redis_addr is required for the redis cache driver")
		}
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}

	return &cfg, nil
}
