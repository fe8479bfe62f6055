package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	server "github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/telemetry"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := config.NewLogger(cfg.Telemetry.ServiceName, cfg.App)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tc, err := telemetry.NewContainer(ctx, cfg.Telemetry, cfg.App, logger.Logger.Logger)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tc.Shutdown(shutdownCtx); err != nil {
			logger.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	if err := server.StartServer(ctx, cfg, tc.Probe(), tc.AppMetrics, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return
	}

	logger.Info("Server stopped")
}
