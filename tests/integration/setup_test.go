//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// TestEnv holds the resources an integration test needs: a Redis endpoint
// backing internal/cache.RedisCache, reachable either via a testcontainer or
// via REDIS_URL in CI.
type TestEnv struct {
	RedisURL       string
	RedisContainer testcontainers.Container
	Logger         *zap.Logger
}

var testEnv *TestEnv

// SetupTestEnvironment initializes the test environment, reusing it until
// TeardownTestEnvironment is called. Every test in this package tears down
// when it finishes, so each one gets its own container.
func SetupTestEnvironment(t *testing.T) *TestEnv {
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	if url := os.Getenv("REDIS_URL"); url != "" {
		logger, _ := zap.NewDevelopment()
		testEnv = &TestEnv{RedisURL: url, Logger: logger}
		return testEnv
	}

	return setupContainer(t, ctx)
}

func setupContainer(t *testing.T, ctx context.Context) *TestEnv {
	logger, _ := zap.NewDevelopment()

	redisContainer, err := tcredis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("redis container not available: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get redis host: %v", err)
	}
	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("failed to get redis port: %v", err)
	}

	testEnv = &TestEnv{
		RedisURL:       fmt.Sprintf("redis://%s:%s", host, port.Port()),
		RedisContainer: redisContainer,
		Logger:         logger,
	}
	return testEnv
}

// TeardownTestEnvironment terminates the container, if one was started.
func TeardownTestEnvironment(t *testing.T) {
	if testEnv == nil {
		return
	}

	if testEnv.RedisContainer != nil {
		if err := testEnv.RedisContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	}

	testEnv = nil
}
