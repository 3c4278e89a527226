package main

import (
	"context"

	"github.com/blossomshop/payments/internal/api"
	"github.com/blossomshop/payments/internal/api/middleware"
	v1 "github.com/blossomshop/payments/internal/api/v1"
	"github.com/blossomshop/payments/internal/api/validator"
	"github.com/blossomshop/payments/internal/config"
	"github.com/blossomshop/payments/internal/metrics"
	"github.com/blossomshop/payments/internal/repository"
	"github.com/blossomshop/payments/internal/service"
	"github.com/blossomshop/payments/pkg/httpclient"
	"github.com/blossomshop/payments/pkg/mpesa"
	"github.com/blossomshop/payments/pkg/mysql"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,

			NewConnectionDB,
			NewFiberApp,
			NewMpesaGateway,

			metrics.NewMetrics,
			validator.NewXValidator,

			repository.NewPaymentRepository,
			repository.NewOrderRepository,
			repository.NewPaymentLogRepository,
			repository.NewTransactionManager,

			service.NewPaymentService,
			NewCheckoutService,
			service.NewCallbackService,

			v1.NewHandler,
		),
		fx.Invoke(startServer),
	).Run()
}

func startServer(app *fiber.App, handler *v1.Handler, m *metrics.Metrics, cfg *config.Config,
	logger *zap.Logger, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler, m, cfg.Auth.JWTSecret)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting api", zap.String("port", cfg.API.Port))
			go func() {
				if err := app.Listen(":" + cfg.API.Port); err != nil {
					logger.Error("api listener stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMpesaGateway(cfg *config.Config) mpesa.Gateway {
	client := httpclient.NewHTTPClient(cfg.Mpesa.Timeout)
	return mpesa.NewGateway(cfg.Mpesa, client)
}

func NewCheckoutService(payments service.PaymentService, gateway mpesa.Gateway, cfg *config.Config,
	m *metrics.Metrics, logger *zap.Logger) service.CheckoutService {
	return service.NewCheckoutService(payments, gateway, cfg.Mpesa, m, logger)
}
