package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fekuna/omnipos-order-service/config"
	"github.com/fekuna/omnipos-order-service/internal/app"
	custRepoPkg "github.com/fekuna/omnipos-order-service/internal/customer/repository"
	custUCPkg "github.com/fekuna/omnipos-order-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-order-service/internal/metrics"
	"github.com/fekuna/omnipos-order-service/internal/notification"
	notifListenerPkg "github.com/fekuna/omnipos-order-service/internal/notification/listener"
	notifRepoPkg "github.com/fekuna/omnipos-order-service/internal/notification/repository"
	"github.com/fekuna/omnipos-order-service/internal/ops"
	"github.com/fekuna/omnipos-order-service/pkg/broker"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "omnipos-order-notification-worker"

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger := app.NewLogger(cfg, serviceName)
	defer appLogger.Sync()
	appLogger.Info("Starting notification worker", cfg.LogFields()...)

	if !cfg.Kafka.Enabled {
		appLogger.Fatal("The notification worker needs Kafka; set KAFKA_ENABLED=true or run the API server with Kafka disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDatabase(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry, cfg.Metrics.Prefix)

	templates, err := notification.NewRegistry(cfg.Notification.Locale)
	if err != nil {
		appLogger.Fatal("Could not load notification templates", zap.Error(err))
	}
	sender := notification.NewLogSender(appLogger)
	dispatcher := notification.NewDispatcher(templates, sender, sender, notifRepoPkg.NewSQLRepository(db), appMetrics, appLogger)
	customers := custUCPkg.NewCustomerUseCase(custRepoPkg.NewSQLRepository(db), appLogger)

	consumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrderEventsTopic,
		GroupID: cfg.Kafka.NotificationGroupID,
	})
	defer consumer.Close()
	appLogger.Info("Connected to Kafka Consumer",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.OrderEventsTopic),
		zap.String("group_id", cfg.Kafka.NotificationGroupID),
	)

	listener := notifListenerPkg.NewNotificationListener(consumer, customers, dispatcher, appLogger)
	opsServer := ops.NewServer(db, registry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		listener.Start(gctx)
		return nil
	})
	g.Go(func() error {
		port := cfg.Server.HTTPPort
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		if err := opsServer.Start(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return opsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("worker stopped with error", zap.Error(err))
		return
	}
	appLogger.Info("Worker stopped")
}
