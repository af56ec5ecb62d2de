package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/homepower/switchplanner/internal/cache"
	"github.com/homepower/switchplanner/internal/gateway"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  int64         `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker defines a health check function
type Checker func(ctx context.Context) CheckResult

// Service fans out readiness checks across this service's external
// dependencies: the gateway (guarded by its own circuit breakers) and the
// price-list cache backing.
type Service struct {
	startTime time.Time
	version   string
	checkers  map[string]Checker
	log       *zap.Logger
	mu        sync.RWMutex
}

// Config holds health service configuration. Gateway and Cache are both
// optional: a nil Gateway means no external switch calls are wired yet, and
// a nil Cache means the in-memory local cache is in use and always reachable.
type Config struct {
	Version string
	Gateway *gateway.Gateway
	Cache   cache.Cache
}

// NewService creates a new health service
func NewService(config *Config, log *zap.Logger) *Service {
	s := &Service{
		startTime: time.Now(),
		version:   config.Version,
		checkers:  make(map[string]Checker),
		log:       log,
	}

	if config.Gateway != nil {
		gw := config.Gateway
		s.RegisterChecker("gateway", func(ctx context.Context) CheckResult {
			return checkGatewayBreaker(gw)
		})
	}
	if config.Cache != nil {
		c := config.Cache
		s.RegisterChecker("cache", func(ctx context.Context) CheckResult {
			return checkCachePing(c)
		})
	}

	return s
}

// RegisterChecker registers a custom health checker
func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.log.Info("registered health checker", zap.String("name", name))
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

// Ready performs a comprehensive readiness check
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	checkers := make(map[string]Checker, len(s.checkers))
	for k, v := range s.checkers {
		checkers[k] = v
	}
	s.mu.RUnlock()

	results := make(map[string]CheckResult)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			result := checker(checkCtx)

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()

	overallStatus := StatusHealthy
	allReady := true

	for _, result := range results {
		if result.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			allReady = false
		} else if result.Status == StatusDegraded && overallStatus != StatusUnhealthy {
			overallStatus = StatusDegraded
		}
	}

	return &ReadyResponse{
		Ready:     allReady,
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

func checkGatewayBreaker(gw *gateway.Gateway) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "gateway", Timestamp: time.Now()}

	if gw.Ready() {
		result.Status = StatusHealthy
		result.Message = "circuit closed"
	} else {
		result.Status = StatusDegraded
		result.Message = "circuit open, switch calls are being rejected"
	}
	result.Duration = time.Since(start).Milliseconds()
	return result
}

func checkCachePing(c cache.Cache) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "cache", Timestamp: time.Now()}

	if err := c.Ping(); err != nil {
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("ping failed: %v", err)
	} else {
		result.Status = StatusHealthy
		result.Message = "reachable"
	}
	result.Duration = time.Since(start).Milliseconds()
	return result
}
