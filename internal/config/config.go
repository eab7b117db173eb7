package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Config конфигурация сервиса
// Значения читаются из TOML, затем перекрываются переменными окружения (и .env, если есть)
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Redis      RedisConfig      `toml:"redis"`
	Cache      CacheConfig      `toml:"cache"`
	Scheduling SchedulingConfig `toml:"scheduling"`
	Admin      AdminConfig      `toml:"admin"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" env:"DB_HOST"`
	Port            int    `toml:"port" env:"DB_PORT"`
	User            string `toml:"user" env:"DB_USER"`
	Password        string `toml:"password" env:"DB_PASSWORD"`
	DBName          string `toml:"dbname" env:"DB_NAME"`
	SSLMode         string `toml:"sslmode" env:"DB_SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

type LogsConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL"`
	File  string `toml:"file" env:"LOG_FILE"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" env:"METRICS_ENABLED"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	Enabled        bool   `toml:"enabled" env:"REDIS_ENABLED"`
	Addr           string `toml:"addr" env:"REDIS_ADDR"`
	Username       string `toml:"username" env:"REDIS_USERNAME"`
	Password       string `toml:"password" env:"REDIS_PASSWORD"`
	DB             int    `toml:"db" env:"REDIS_DB"`
	LockTTLSeconds int    `toml:"lock_ttl_seconds"`
	LockPrefix     string `toml:"lock_prefix"`
}

type CacheConfig struct {
	Enabled    bool `toml:"enabled" env:"CACHE_ENABLED"`
	Size       int  `toml:"size"`
	TTLSeconds int  `toml:"ttl_seconds"`
}

type SchedulingConfig struct {
	Timezone               string `toml:"timezone" env:"APP_TIMEZONE"`
	SlotGranularityMinutes int    `toml:"slot_granularity_minutes"`
	LeadTimeMinutes        int    `toml:"lead_time_minutes"`
	DefaultDurationMinutes int    `toml:"default_duration_minutes"`
	MaxAdvanceDays         int    `toml:"max_advance_days"`
}

type AdminConfig struct {
	// bcrypt-хэш токена администратора
	TokenHash string `toml:"token_hash" env:"ADMIN_TOKEN_HASH"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	TTLMinutes        int     `toml:"ttl_minutes"`
}

// Load читает конфигурацию из файла и переменных окружения
func Load(path string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: Load - .env: %v", ErrInvalidConfig, err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: Load - decode %s: %v", ErrInvalidConfig, path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: Load - env: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default значения, которые используются, если ключ отсутствует в файле
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "carwash",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "carwash_booking",
		},
		Redis: RedisConfig{
			Addr:           "localhost:6379",
			LockTTLSeconds: 10,
			LockPrefix:     "carwash:booking:lock:",
		},
		Cache: CacheConfig{
			Size:       64,
			TTLSeconds: 30,
		},
		Scheduling: SchedulingConfig{
			Timezone:               "America/Sao_Paulo",
			SlotGranularityMinutes: 30,
			LeadTimeMinutes:        60,
			DefaultDurationMinutes: 90,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			TTLMinutes:        10,
		},
	}
}

// Validate проверяет значения, без которых сервис не сможет корректно считать слоты
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port = %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Scheduling.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("%w: scheduling.slot_granularity_minutes must be positive", ErrInvalidConfig)
	}
	if c.Scheduling.LeadTimeMinutes < 0 {
		return fmt.Errorf("%w: scheduling.lead_time_minutes must not be negative", ErrInvalidConfig)
	}
	if c.Scheduling.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("%w: scheduling.default_duration_minutes must be positive", ErrInvalidConfig)
	}
	if c.Scheduling.MaxAdvanceDays < 0 {
		return fmt.Errorf("%w: scheduling.max_advance_days must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Scheduling.Location(); err != nil {
		return err
	}
	if c.Redis.Enabled && c.Redis.LockTTLSeconds <= 0 {
		return fmt.Errorf("%w: redis.lock_ttl_seconds must be positive", ErrInvalidConfig)
	}
	if c.Cache.Enabled && c.Cache.Size <= 0 {
		return fmt.Errorf("%w: cache.size must be positive", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit requires positive requests_per_second and burst", ErrInvalidConfig)
	}
	return nil
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Location часовой пояс мойки
func (s SchedulingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduling.timezone %q: %v", ErrInvalidConfig, s.Timezone, err)
	}
	return loc, nil
}

func (s SchedulingConfig) Granularity() time.Duration {
	return time.Duration(s.SlotGranularityMinutes) * time.Minute
}

func (s SchedulingConfig) LeadTime() time.Duration {
	return time.Duration(s.LeadTimeMinutes) * time.Minute
}

func (r RedisConfig) LockTTL() time.Duration {
	return time.Duration(r.LockTTLSeconds) * time.Second
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
