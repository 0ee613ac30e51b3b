package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config корневая конфигурация сервиса
type Config struct {
	Server           ServerConfig           `toml:"server"`
	Database         DatabaseConfig         `toml:"database"`
	Redis            RedisConfig            `toml:"redis"`
	AMQP             AMQPConfig             `toml:"amqp"`
	Holds            HoldsConfig            `toml:"holds"`
	Availability     AvailabilityConfig     `toml:"availability"`
	Fees             FeesConfig             `toml:"fees"`
	Worker           WorkerConfig           `toml:"worker"`
	PaymentProcessor PaymentProcessorConfig `toml:"payment_processor"`
	CatalogService   CatalogServiceConfig   `toml:"catalog_service"`
	CustomerService  CustomerServiceConfig  `toml:"customer_service"`
	Logs             LogsConfig             `toml:"logs"`
	Metrics          MetricsConfig          `toml:"metrics"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN собирает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	// RuleCacheTTL время жизни кэша правил, секунды
	RuleCacheTTL int `toml:"rule_cache_ttl"`
}

type AMQPConfig struct {
	URI string `toml:"uri"`
}

type HoldsConfig struct {
	// DefaultTTLMinutes время жизни холда по умолчанию
	DefaultTTLMinutes int `toml:"default_ttl_minutes"`
}

type AvailabilityConfig struct {
	// MaxRangeDays максимальная ширина запрашиваемого диапазона
	MaxRangeDays int `toml:"max_range_days"`
	// DefaultSlotLimit лимит слотов в одном ответе
	DefaultSlotLimit int `toml:"default_slot_limit"`
}

type FeesConfig struct {
	PlatformFeePercent     float64 `toml:"platform_fee_percent"`
	NoShowFeePercent       float64 `toml:"no_show_fee_percent"`
	NoShowFeeFlat          int64   `toml:"no_show_fee_flat"`
	CancellationFeePercent float64 `toml:"cancellation_fee_percent"`
	CancellationFeeFlat    int64   `toml:"cancellation_fee_flat"`
}

type WorkerConfig struct {
	// SweepIntervalSeconds период запуска уборки протухших холдов
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
	// RelayIntervalSeconds период поллинга outbox
	RelayIntervalSeconds int `toml:"relay_interval_seconds"`
	// RelayBatchSize размер пачки событий outbox за тик
	RelayBatchSize uint64 `toml:"relay_batch_size"`
	// Concurrency воркеров asynq
	Concurrency int `toml:"concurrency"`
}

type PaymentProcessorConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
	// CircuitThreshold ошибок подряд до размыкания circuit breaker
	CircuitThreshold int64 `toml:"circuit_threshold"`
	MaxRetries       int   `toml:"max_retries"`
}

type CatalogServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type CustomerServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Load читает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("server.http_port must be positive")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("database.host and database.dbname are required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.AMQP.URI == "" {
		return fmt.Errorf("amqp.uri is required")
	}
	if c.PaymentProcessor.URL == "" {
		return fmt.Errorf("payment_processor.url is required")
	}
	return nil
}
