package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/homepower/switchplanner/internal/metrics"
)

// Metrics times every request and records it under its registered route
// pattern (c.Route().Path), not the raw URL, so "/pricelist/:date" stays one
// series instead of one per date requested. The status recorded is the one
// set when c.Next() returns; an error returned up the chain is turned into a
// response by Fiber's error handler only afterwards, so such a request is
// recorded with the status that was set before that.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		metrics.RecordHTTPRequest(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start).Seconds())
		return err
	}
}
