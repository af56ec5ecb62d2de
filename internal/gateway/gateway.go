// Package gateway talks to the external home-automation gateway that
// physically switches devices on and off.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/homepower/switchplanner/internal/apperr"
	"github.com/homepower/switchplanner/internal/infrastructure/circuitbreaker"
	"github.com/homepower/switchplanner/internal/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Switcher is what the scheduler depends on; a narrow seam for fakes in
// tests.
type Switcher interface {
	SwitchDevice(ctx context.Context, entityID string, on bool) error
}

// Gateway posts switch requests to a home-automation style REST API. The
// call is guarded by two independent circuit breakers: a hand-rolled one
// wraps the *http.Client itself (transport errors and 5xx responses count
// as failures), and a sony/gobreaker instance wraps the logical "switch a
// device" operation (request building and the wrapped client call). JSON
// encoding of the body happens before, outside either breaker. The breakers
// have fixed names, "gateway-transport" and "gateway-operation".
type Gateway struct {
	baseURL string
	token   string
	client  *circuitbreaker.HTTPClient
	op      *gobreaker.CircuitBreaker
	log     *zap.Logger
}

type Settings struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	MaxRequests      uint32
	Interval         time.Duration
	BreakerTimeout   time.Duration
	FailureThreshold uint32
}

func New(settings Settings, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}

	transportBreaker := circuitbreaker.New(circuitbreaker.Settings{
		Name:             "gateway-transport",
		MaxRequests:      settings.MaxRequests,
		Interval:         settings.Interval,
		Timeout:          settings.BreakerTimeout,
		FailureThreshold: settings.FailureThreshold,
	}, log)

	httpClient := &http.Client{Timeout: settings.Timeout}
	wrapped := circuitbreaker.NewHTTPClient(httpClient, transportBreaker, log)

	op := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gateway-operation",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("gateway operation breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			metrics.RecordCircuitBreakerState("gateway", "operation", int(to))
		},
	})

	return &Gateway{
		baseURL: settings.BaseURL,
		token:   settings.Token,
		client:  wrapped,
		op:      op,
		log:     log,
	}
}

// Ready reports whether the operation-level breaker is currently allowing
// calls through; used by the readiness probe.
func (g *Gateway) Ready() bool {
	return g.op.State() != gobreaker.StateOpen
}

type switchRequest struct {
	EntityID string `json:"entity_id"`
}

// SwitchDevice posts to <base>/api/services/switch/{turn_on|turn_off} with
// bearer auth. A 2xx, 3xx or 4xx response counts as success. A 5xx response
// is counted as a failure by the transport breaker and returned as a
// SystemError, the same as a transport error.
func (g *Gateway) SwitchDevice(ctx context.Context, entityID string, on bool) error {
	if g.token == "" || g.baseURL == "" {
		return apperr.NewSystem("gateway is not configured", nil)
	}

	service := "turn_off"
	if on {
		service = "turn_on"
	}
	url := fmt.Sprintf("%s/api/services/switch/%s", g.baseURL, service)

	body, err := json.Marshal(switchRequest{EntityID: entityID})
	if err != nil {
		return apperr.NewSystem("failed to encode switch request", err)
	}

	_, err = g.op.Execute(func() (interface{}, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if reqErr != nil {
			return nil, reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+g.token)

		resp, doErr := g.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		defer resp.Body.Close()
		return nil, nil
	})
	if err != nil {
		return apperr.NewSystem(fmt.Sprintf("gateway switch call to %s failed", entityID), err)
	}
	return nil
}
