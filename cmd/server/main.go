package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/homepower/switchplanner/internal/cache"
	"github.com/homepower/switchplanner/internal/config"
	"github.com/homepower/switchplanner/internal/events"
	"github.com/homepower/switchplanner/internal/gateway"
	"github.com/homepower/switchplanner/internal/httpapi"
	"github.com/homepower/switchplanner/internal/httpapi/middleware"
	"github.com/homepower/switchplanner/internal/priceprovider"
	"github.com/homepower/switchplanner/internal/registry"
	"github.com/homepower/switchplanner/internal/scheduler"
	"github.com/homepower/switchplanner/internal/service/health"
)

const (
	serviceName    = "switchplanner"
	serviceVersion = "v1.0.0"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("starting switchplanner", zap.String("service", serviceName), zap.String("version", serviceVersion))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	gw := gateway.New(gateway.Settings{
		BaseURL:          cfg.Gateway.BaseURL,
		Token:            cfg.Gateway.Token,
		Timeout:          cfg.Gateway.Timeout,
		MaxRequests:      cfg.CircuitBreaker.MaxRequests,
		Interval:         cfg.CircuitBreaker.Interval,
		BreakerTimeout:   cfg.CircuitBreaker.Timeout,
		FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
	}, logger)

	backingCache, closeCache := newBackingCache(cfg.Cache.RedisURL, logger)
	defer closeCache()

	selector := priceprovider.NewSelector(
		cfg.Tariff.Type,
		priceprovider.NewW12Provider(),
		priceprovider.NewDayAheadMarketProvider(nil, backingCache, cfg.Cache.PriceListCapacityDays, cfg.Cache.PriceListTTL),
	)
	assembler := priceprovider.NewAssembler(selector)

	publisher, closePublisher := newPublisher(cfg.Events, logger)
	defer closePublisher()

	sched := scheduler.New(gw, publisher, logger)

	entries := make([]registry.Entry, 0, len(cfg.PowerConsumers))
	for _, e := range cfg.PowerConsumers {
		entries = append(entries, registry.Entry{ID: e.DeviceID, Name: e.Name, GatewayID: e.GatewayID})
	}
	reg := registry.New(entries, assembler, sched, logger)

	healthSvc := health.NewService(&health.Config{
		Version: serviceVersion,
		Gateway: gw,
		Cache:   backingCache,
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.Metrics())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.HTTP.RateLimitPerMinute,
		Expiration: time.Minute,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORS.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	httpapi.RegisterRoutes(app, httpapi.Handlers{
		PowerConsumers: httpapi.NewPowerConsumerHandler(reg, logger),
		PriceList:      httpapi.NewPriceListHandler(assembler, logger),
		Health:         httpapi.NewHealthHandler(healthSvc),
		MetricsPath:    cfg.Prometheus.Path,
	})

	go func() {
		logger.Info("starting http server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

func newBackingCache(redisURL string, logger *zap.Logger) (cache.Cache, func()) {
	if redisURL == "" {
		local := cache.NewLocalCache(time.Minute, logger)
		return local, func() { _ = local.Close() }
	}

	redisCache, err := cache.NewRedisCache(redisURL, logger)
	if err != nil {
		logger.Warn("redis not available, falling back to local cache", zap.Error(err))
		local := cache.NewLocalCache(time.Minute, logger)
		return local, func() { _ = local.Close() }
	}
	return redisCache, func() { _ = redisCache.Close() }
}

func newPublisher(cfg config.EventsConfig, logger *zap.Logger) (events.Publisher, func()) {
	if !cfg.Enabled {
		return events.NewNoop(), func() {}
	}

	switch cfg.Broker {
	case config.EventsBrokerNATS:
		pub, err := events.NewNATSPublisher(cfg.URL, logger)
		if err != nil {
			logger.Warn("nats not available, falling back to noop stats publisher", zap.Error(err))
			return events.NewNoop(), func() {}
		}
		return pub, func() { _ = pub.Close() }
	case config.EventsBrokerRabbitMQ:
		pub, err := events.NewRabbitMQPublisher(cfg.URL, logger)
		if err != nil {
			logger.Warn("rabbitmq not available, falling back to noop stats publisher", zap.Error(err))
			return events.NewNoop(), func() {}
		}
		return pub, func() { _ = pub.Close() }
	default:
		return events.NewNoop(), func() {}
	}
}
