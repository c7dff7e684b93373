package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fekuna/omnipos-order-service/config"
	"github.com/fekuna/omnipos-order-service/internal/app"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/metrics"
	"github.com/fekuna/omnipos-order-service/internal/ops"
	"github.com/fekuna/omnipos-order-service/internal/product"
	"github.com/fekuna/omnipos-order-service/pkg/broker"
	"github.com/fekuna/omnipos-order-service/pkg/cache"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/search"
	"github.com/fekuna/omnipos-order-service/pkg/tracing"

	catH "github.com/fekuna/omnipos-order-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-order-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-order-service/internal/category/usecase"

	custH "github.com/fekuna/omnipos-order-service/internal/customer/handler"
	custRepoPkg "github.com/fekuna/omnipos-order-service/internal/customer/repository"
	custUCPkg "github.com/fekuna/omnipos-order-service/internal/customer/usecase"

	invH "github.com/fekuna/omnipos-order-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-order-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-order-service/internal/inventory/usecase"

	"github.com/fekuna/omnipos-order-service/internal/notification"
	notifH "github.com/fekuna/omnipos-order-service/internal/notification/handler"
	notifListenerPkg "github.com/fekuna/omnipos-order-service/internal/notification/listener"
	notifRepoPkg "github.com/fekuna/omnipos-order-service/internal/notification/repository"

	orderH "github.com/fekuna/omnipos-order-service/internal/order/handler"
	"github.com/fekuna/omnipos-order-service/internal/order/publisher"
	orderRepoPkg "github.com/fekuna/omnipos-order-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-order-service/internal/order/usecase"

	prodH "github.com/fekuna/omnipos-order-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-order-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-order-service/internal/product/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "omnipos-order-service"

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := app.NewLogger(cfg, serviceName)
	defer appLogger.Sync()
	appLogger.Info("Starting order service", cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracing, err := tracing.Setup(ctx, &tracing.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		appLogger.Fatal("Could not set up tracing", zap.Error(err))
	}

	// 4. Connect to Database
	db, err := app.OpenDatabase(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	txManager := database.NewTxManager(db, database.WithLockTimeout(cfg.Postgres.LockTimeout))

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry, cfg.Metrics.Prefix)

	// 6. Initialize Repositories
	catRepo := catRepoPkg.NewSQLRepository(db)
	prodRepo := prodRepoPkg.NewSQLRepository(db)
	invRepo := invRepoPkg.NewSQLRepository(db)
	orderRepo := orderRepoPkg.NewSQLRepository(db)
	custRepo := custRepoPkg.NewSQLRepository(db)
	notifRepo := notifRepoPkg.NewSQLRepository(db)

	// 7. Optional catalog backends. The interfaces stay nil when a backend is off.
	var productCache product.Cache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, product cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			productCache = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var productIndex product.SearchIndex
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, search falls back to the database", zap.Error(err))
		} else {
			productIndex = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 8. Initialize UseCases
	custUC := custUCPkg.NewCustomerUseCase(custRepo, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, txManager, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, txManager, productCache, productIndex, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, txManager, appMetrics, appLogger)

	templates, err := notification.NewRegistry(cfg.Notification.Locale)
	if err != nil {
		appLogger.Fatal("Could not load notification templates", zap.Error(err))
	}
	sender := notification.NewLogSender(appLogger)
	dispatcher := notification.NewDispatcher(templates, sender, sender, notifRepo, appMetrics, appLogger)

	// 9. Order events go to Kafka, or straight to the notification listener without it.
	var consumer notifListenerPkg.MessageReader
	var sink publisher.Sink
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrderEventsTopic,
		})
		defer producer.Close()
		sink = producer
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrderEventsTopic))

		if cfg.Notification.InProcessWorker {
			kafkaConsumer := broker.NewConsumer(&broker.Config{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.OrderEventsTopic,
				GroupID: cfg.Kafka.NotificationGroupID,
			})
			defer kafkaConsumer.Close()
			consumer = kafkaConsumer
		}
	}
	notifListener := notifListenerPkg.NewNotificationListener(consumer, custUC, dispatcher, appLogger)
	if sink == nil {
		sink = notifListenerPkg.DirectSink{Listener: notifListener}
		appLogger.Info("Kafka disabled, order events are delivered in process")
	}
	emitter := publisher.NewEmitter(sink, cfg.Notification.QueueSize, cfg.Notification.SendTimeout, appMetrics, appLogger)

	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, prodRepo, invUC, txManager, emitter, appMetrics, appLogger)

	// 10. Initialize Handlers
	catHandler := catH.NewCategoryHandler(catUC, appLogger)
	prodHandler := prodH.NewProductHandler(prodUC, appLogger)
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	orderHandler := orderH.NewOrderHandler(orderUC, custUC, appLogger)
	custHandler := custH.NewCustomerHandler(custUC, appLogger)
	notifHandler := notifH.NewNotificationHandler(notifRepo, appLogger)

	// 11. gRPC Server
	lis, err := net.Listen("tcp", normalizePort(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}

	authenticator := auth.NewAuthenticator(cfg.JWT.SecretKey, cfg.JWT.TrustMetadata)
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(appMetrics.UnaryInterceptor(), authenticator.UnaryInterceptor()),
	)

	catH.RegisterCategoryServiceServer(grpcServer, catHandler)
	prodH.RegisterProductServiceServer(grpcServer, prodHandler)
	invH.RegisterInventoryServiceServer(grpcServer, invHandler)
	orderH.RegisterOrderServiceServer(grpcServer, orderHandler)
	custH.RegisterCustomerServiceServer(grpcServer, custHandler)
	notifH.RegisterNotificationServiceServer(grpcServer, notifHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	opsServer := ops.NewServer(db, registry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting gRPC server", zap.String("port", cfg.Server.GRPCPort))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		appLogger.Info("Starting ops HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := opsServer.Start(normalizePort(cfg.Server.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			notifListener.Start(gctx)
			return nil
		})
	}

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("ops server shutdown", zap.Error(err))
		}
		if err := emitter.Close(shutdownCtx); err != nil {
			appLogger.Warn("order events not flushed", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			appLogger.Warn("tracing shutdown", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("server stopped with error", zap.Error(err))
		return
	}
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
