package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConsumptionPlansCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switchplanner_consumption_plans_created_total",
		Help: "Total consumption plans created, by outcome",
	}, []string{"result"}) // ok, rejected

	ConsumptionPlansCanceledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "switchplanner_consumption_plans_canceled_total",
		Help: "Total consumption plans canceled by user request",
	})

	SwitchActionsExecutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switchplanner_switch_actions_executed_total",
		Help: "Total switch actions executed, by result",
	}, []string{"result"}) // ok, error

	GatewayCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "switchplanner_gateway_call_duration_seconds",
		Help:    "Duration of gateway switch calls in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"result"})

	PriceListCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "switchplanner_price_list_cache_hits_total",
		Help: "Price-list cache hits",
	})

	PriceListCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "switchplanner_price_list_cache_misses_total",
		Help: "Price-list cache misses",
	})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "switchplanner_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"gateway", "layer"}) // layer: transport, operation

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "switchplanner_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switchplanner_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})
)

// RecordPlanCreated records a plan-creation attempt outcome.
func RecordPlanCreated(ok bool) {
	result := "rejected"
	if ok {
		result = "ok"
	}
	ConsumptionPlansCreatedTotal.WithLabelValues(result).Inc()
}

// RecordSwitchAction records a single executed switch action and the gateway
// round-trip it took.
func RecordSwitchAction(ok bool, durationSeconds float64) {
	result := "error"
	if ok {
		result = "ok"
	}
	SwitchActionsExecutedTotal.WithLabelValues(result).Inc()
	GatewayCallDuration.WithLabelValues(result).Observe(durationSeconds)
}

// RecordPriceListCacheAccess records a price-list cache hit or miss.
func RecordPriceListCacheAccess(hit bool) {
	if hit {
		PriceListCacheHitsTotal.Inc()
		return
	}
	PriceListCacheMissesTotal.Inc()
}

// RecordCircuitBreakerState publishes the current state of a named gateway
// breaker at a given protection layer.
func RecordCircuitBreakerState(gateway, layer string, state int) {
	CircuitBreakerState.WithLabelValues(gateway, layer).Set(float64(state))
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, durationSeconds float64) {
	statusStr := fmt.Sprintf("%d", status)
	HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(durationSeconds)
}
