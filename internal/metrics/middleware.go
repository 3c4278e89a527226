package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPMiddleware records request counts, durations and in-flight gauge for
// every route.
func HTTPMiddleware(metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}

		metrics.RecordHTTPRequest(c.Method(), path,
			strconv.Itoa(c.Response().StatusCode()), time.Since(start))

		return err
	}
}
