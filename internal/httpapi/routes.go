package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Handlers bundles every handler routes.go needs to wire, so main.go only
// has to construct one value and pass it through.
type Handlers struct {
	PowerConsumers *PowerConsumerHandler
	PriceList      *PriceListHandler
	Health         *HealthHandler
	MetricsPath    string
}

// RegisterRoutes mounts every route named in SPEC_FULL.md's HTTP transport
// table onto app.
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/pricelist/:date", h.PriceList.Get)

	consumers := app.Group("/power-consumer")
	consumers.Get("/", h.PowerConsumers.List)
	consumers.Post("/:id/consumption-plan", h.PowerConsumers.Schedule)
	consumers.Delete("/:id/consumption-plan", h.PowerConsumers.Cancel)

	health := app.Group("/health")
	health.Get("/live", h.Health.Live)
	health.Get("/ready", h.Health.Ready)

	path := h.MetricsPath
	if path == "" {
		path = "/metrics"
	}
	promHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get(path, func(c *fiber.Ctx) error {
		promHandler(c.Context())
		return nil
	})
}
