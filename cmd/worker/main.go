package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"abcretail/internal/consumer"
	"abcretail/internal/model"
	"abcretail/internal/store"
	"abcretail/pkg/config"
	"abcretail/pkg/database"
	"abcretail/pkg/logger"
	"abcretail/prometheus"
)

func main() {
	_ = godotenv.Load()

	appConfig, err := config.Load("abcretail_worker")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting abcretail worker",
		zap.String("environment", appConfig.Server.Env),
		zap.Duration("poll_interval", appConfig.Queue.PollInterval))

	prometheus.InitMetrics(appConfig)

	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	st := store.NewGormStore(database.GetDB())

	opts := consumer.Options{
		PollInterval:    appConfig.Queue.PollInterval,
		Lease:           appConfig.Queue.Lease,
		MaxDequeueCount: appConfig.Queue.MaxDequeueCount,
		RequeueDelay:    appConfig.Queue.RequeueDelay,
	}

	orderConsumer := consumer.NewDispatcher(
		model.OrderNotificationsQueue, st,
		consumer.OrderNotificationHandler(log), opts, log)
	stockConsumer := consumer.NewDispatcher(
		model.StockUpdatesQueue, st,
		consumer.StockUpdateHandler(log), opts, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orderConsumer.Run(ctx) })
	g.Go(func() error { return stockConsumer.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Worker stopped with error", zap.Error(err))
	}
	log.Info("Worker shut down")
}
