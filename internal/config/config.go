package config

import "time"

// Config is the root configuration tree, unmarshalled by viper from the
// settings file, environment overrides, and the RUN_MODE-selected dotenv
// file (see loader.go).
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Tariff         TariffConfig         `mapstructure:"tariff"`
	Gateway        GatewayConfig        `mapstructure:"gateway"`
	PowerConsumers []PowerConsumerEntry `mapstructure:"power_consumers"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Cache          CacheConfig          `mapstructure:"cache"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Events         EventsConfig         `mapstructure:"events"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	CORS           CORSConfig           `mapstructure:"cors"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
}

// TariffType selects which price-list source backs the tariff selector.
type TariffType string

const (
	TariffW12            TariffType = "W12"
	TariffDayAheadMarket TariffType = "DayAheadMarket"
)

type TariffConfig struct {
	Type TariffType `mapstructure:"type"`
}

type GatewayConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PowerConsumerEntry struct {
	DeviceID  string `mapstructure:"device_id"`
	Name      string `mapstructure:"name"`
	GatewayID string `mapstructure:"gateway_id"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CacheConfig struct {
	RedisURL             string        `mapstructure:"redis_url"`
	PriceListTTL         time.Duration `mapstructure:"price_list_ttl"`
	PriceListCapacityDays int          `mapstructure:"price_list_capacity_days"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// EventsBroker selects the backing transport for the stats publisher.
type EventsBroker string

const (
	EventsBrokerNone     EventsBroker = "none"
	EventsBrokerNATS     EventsBroker = "nats"
	EventsBrokerRabbitMQ EventsBroker = "rabbitmq"
)

type EventsConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Broker  EventsBroker `mapstructure:"broker"`
	URL     string       `mapstructure:"url"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
