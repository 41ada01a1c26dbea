package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kebab-orders/config"
	httpapi "kebab-orders/order-svc/internal/api/http"
	"kebab-orders/order-svc/internal/payment"
	"kebab-orders/order-svc/internal/service"
	"kebab-orders/order-svc/internal/storage"
	"kebab-orders/pkg/lifecycle"

	"go.uber.org/zap"
)

const orderMarkerTTL = 24 * time.Hour

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repository := mustInitRepository(ctx, cfg, logger)

	redisClient := config.MustInitRedis(cfg, logger)
	defer redisClient.Close()

	writer := config.NewKafkaWriter(cfg, storage.OrdersTopic)
	defer writer.Close()

	orders := service.NewOrderService(
		repository,
		storage.NewRedisMarker(redisClient, orderMarkerTTL),
		storage.NewKafkaPublisher(writer),
		service.DefaultQRGenerator{BaseURL: cfg.PublicBaseURL},
		service.WithPolicy(lifecycle.Policy{AllowSkipPreparing: cfg.AllowSkipPreparing}),
		service.WithTotalPolicy(service.AmountPolicy(cfg.TotalPolicy)),
		service.WithLogger(logger.Named("orders")),
	)

	provider := payment.NewBreakingProvider(
		payment.NewStripeProvider(cfg.StripeSecretKey, nil),
		payment.DefaultBreakerSettings,
		logger.Named("payment"),
	)
	payments := service.NewPaymentService(
		provider,
		repository,
		cfg.PaymentCurrency,
		service.AmountPolicy(cfg.PaymentAmountPolicy),
		logger.Named("payment"),
	)

	handler := httpapi.NewHandler(orders, payments, logger)

	srv := &http.Server{
		Addr:         cfg.Addr(":8081"),
		Handler:      httpapi.NewRouter(handler, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Order Service starting", zap.String("addr", srv.Addr), zap.String("store", cfg.OrderStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
}

func mustInitRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) service.OrderRepository {
	if cfg.OrderStore == config.StoreMongo {
		db := config.MustInitMongo(ctx, cfg, logger)
		repository := storage.NewMongoRepository(db)
		if err := repository.CreateIndexes(ctx); err != nil {
			logger.Fatal("Failed to create indexes", zap.Error(err))
		}
		return repository
	}

	db := config.MustInitPostgres(cfg, logger)
	if err := storage.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	return storage.NewPostgresRepository(db)
}
