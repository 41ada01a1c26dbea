package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"kebab-orders/config"
	"kebab-orders/kitchen-board/internal/client"
	"kebab-orders/kitchen-board/internal/views"
	"kebab-orders/pkg/lifecycle"

	"go.uber.org/zap"
)

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

	api := client.New(cfg.OrderSvcURL, nil)
	store := views.NewStore(api, views.WithStoreLogger(logger.Named("store")))
	dashboard := views.NewDashboard(store, api, lifecycle.Policy{AllowSkipPreparing: cfg.AllowSkipPreparing}, nil)

	go store.Run(ctx)
	console := views.NewConsole(dashboard, api, views.NewPaymentPage(api), api, os.Stdout, nil)
	go readCommands(ctx, stop, console, logger)

	fmt.Println(views.ConsoleUsage)
	for {
		select {
		case <-ctx.Done():
			return
		case <-store.Changes():
			var notice *views.Notice
			if n, ok := store.Notice(); ok {
				notice = &n
			}
			fmt.Print("\033[H\033[2J")
			if err := views.Render(os.Stdout, dashboard.View(), notice); err != nil {
				logger.Error("render failed", zap.Error(err))
			}
			fmt.Println(views.ConsoleUsage)
		}
	}
}

func readCommands(ctx context.Context, quit context.CancelFunc, console *views.Console, logger *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" {
			quit()
			return
		}

		err := console.Exec(ctx, line)
		switch {
		case errors.Is(err, views.ErrUnknownCommand):
			fmt.Println(views.ConsoleUsage)
		case err != nil:
			logger.Warn("command failed", zap.String("command", line), zap.Error(err))
			fmt.Println("error:", err)
		}
	}
}
