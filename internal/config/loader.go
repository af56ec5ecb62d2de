package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from configs/config.yaml, a RUN_MODE-selected
// dotenv file, and APP-prefixed environment overrides, in that order of
// increasing precedence.
func Load() (*Config, error) {
	runMode := os.Getenv("RUN_MODE")
	if runMode == "" {
		runMode = "development"
	}

	envFile := fmt.Sprintf(".env.%s", runMode)
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Legacy/alias env vars the distilled spec names directly.
	viper.BindEnv("http.port", "APPLICATION_PORT", "APP_HTTP_PORT")
	viper.BindEnv("gateway.base_url", "HOME_ASSISTANT_BASE_URL", "APP_GATEWAY_BASE_URL")
	viper.BindEnv("gateway.token", "HOME_ASSISTANT_TOKEN", "APP_GATEWAY_TOKEN")
	viper.BindEnv("tariff.type", "TARIFF_TYPE", "APP_TARIFF_TYPE")
	viper.BindEnv("cache.redis_url", "REDIS_URL", "APP_CACHE_REDIS_URL")
	viper.BindEnv("events.url", "EVENTS_URL", "APP_EVENTS_URL")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = runMode
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "switchplanner")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.read_timeout", 10*time.Second)
	viper.SetDefault("http.write_timeout", 10*time.Second)
	viper.SetDefault("http.idle_timeout", 60*time.Second)
	viper.SetDefault("http.rate_limit_per_minute", 120)
	viper.SetDefault("tariff.type", string(TariffW12))
	viper.SetDefault("gateway.timeout", 10*time.Second)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("cache.price_list_ttl", 24*time.Hour)
	viper.SetDefault("cache.price_list_capacity_days", 30)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60*time.Second)
	viper.SetDefault("circuit_breaker.timeout", 30*time.Second)
	viper.SetDefault("circuit_breaker.failure_threshold", 5)
	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.broker", string(EventsBrokerNone))
	viper.SetDefault("prometheus.enabled", true)
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("cors.allowed_origins", []string{"*"})
}
