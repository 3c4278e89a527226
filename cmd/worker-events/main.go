package main

import (
	"context"
	"time"

	"github.com/blossomshop/payments/internal/config"
	"github.com/blossomshop/payments/internal/metrics"
	"github.com/blossomshop/payments/internal/publishers"
	"github.com/blossomshop/payments/internal/repository"
	"github.com/blossomshop/payments/internal/service"
	"github.com/blossomshop/payments/pkg/mq"
	"github.com/blossomshop/payments/pkg/mysql"
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
			NewMQConnection,
			NewMQPublisher,

			metrics.NewMetrics,

			repository.NewPaymentRepository,
			repository.NewPaymentLogRepository,

			service.NewEventService,

			publishers.NewCompletedPublisher,
		),
		fx.Invoke(runCompletedPublisher),
	).Run()
}

func runCompletedPublisher(cfg *config.Config, publisher publishers.CompletedPublisher, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.QueuePaymentCompleted}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			logger.Info("queue declared", zap.String("queue", publishers.QueuePaymentCompleted))

			go func() {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if err := publisher.Publish(appCtx); err != nil {
							logger.Error("failed to publish completed payments", zap.Error(err))
						}
					case <-appCtx.Done():
						logger.Info("publisher context cancelled")
						return
					}
				}
			}()

			logger.Info("events publisher started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping events publisher")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}
