package api

import (
	"github.com/blossomshop/payments/internal/api/middleware"
	v1 "github.com/blossomshop/payments/internal/api/v1"
	"github.com/blossomshop/payments/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const prefixV1 = "/v1/"

func SetupRoutes(app *fiber.App, handler *v1.Handler, m *metrics.Metrics, jwtSecret string) {
	app.Use(metrics.HTTPMiddleware(m))

	app.Get("/ping", handler.Pong)
	app.Get("/metrics", metricsHandler())

	authorized := middleware.AuthJWT(jwtSecret)

	app.Post(prefixV1+"payments", authorized, handler.CreatePayment)
	app.Post(prefixV1+"payments/initiate", authorized, handler.InitiatePayment)
	app.Get(prefixV1+"payments/:id", authorized, handler.GetPayment)

	// The gateway authenticates by URL secrecy, not by token.
	app.Post(prefixV1+"payments/callback", handler.Callback)
}

func metricsHandler() fiber.Handler {
	scrape := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		scrape(c.Context())
		return nil
	}
}
