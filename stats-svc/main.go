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
	"kebab-orders/pkg/domain"
	httpapi "kebab-orders/stats-svc/internal/api/http"
	"kebab-orders/stats-svc/internal/service"
	"kebab-orders/stats-svc/internal/storage"

	"go.uber.org/zap"
)

const consumerGroup = "stats-svc"

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

	redisClient := config.MustInitRedis(cfg, logger)
	defer redisClient.Close()

	store := storage.NewStore(redisClient, storage.DefaultTTL)

	reader := config.NewKafkaReader(cfg, domain.OrdersTopic, consumerGroup)
	defer reader.Close()

	consumer := service.NewConsumer(reader, store, logger.Named("consumer"))
	go consumer.Start(ctx)

	handler := httpapi.NewHandler(service.NewStatsService(store, nil))

	srv := &http.Server{
		Addr:         cfg.Addr(":8084"),
		Handler:      httpapi.NewRouter(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Stats Service starting", zap.String("addr", srv.Addr))
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
