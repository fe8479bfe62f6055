package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/telemetry"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/tui"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

func main() {
	cfg, err := config.LoadMobile()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// The terminal belongs to the UI, so logs go next to the storage file.
	logPath := cfg.Mobile.StoragePath + ".log"
	logger, err := config.NewLogger("todo-mobile", cfg.App, logPath)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tc, err := telemetry.NewContainer(ctx, cfg.Telemetry, cfg.App, logger.Logger.Logger)
	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tc.Shutdown(shutdownCtx); err != nil {
			logger.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	storage, err := mobile.OpenSQLiteStorage(
		cfg.Mobile.StoragePath,
		filepath.Join(pkg.ResolvePath(cfg.Database.MigrationsPath), "mobile"),
	)
	if err != nil {
		log.Fatal("Failed to open storage:", err)
	}

	defer storage.Close()

	zl := logger.Logger.Logger

	queue := mobile.NewSyncQueue(storage, mobile.MockClients(blockchain.WithDelayScale(cfg.Mobile.DelayScale)), zl)
	queue.PollInterval = cfg.Mobile.PollEvery.Duration()
	queue.OnResult = func(r mobile.SyncResult) {
		tc.AppMetrics.RecordSyncResult(ctx, string(r.Network), string(r.Status))
	}

	store := mobile.NewStore(storage, queue, zl)
	if err := store.Load(ctx); err != nil {
		log.Fatal("Failed to load todos:", err)
	}

	wallet := mobile.NewWallet(storage, nil)
	if _, _, err := wallet.Restore(ctx); err != nil {
		logger.Warn("Wallet restore failed", zap.Error(err))
	}

	go func() {
		if _, err := queue.Resume(ctx); err != nil {
			logger.Warn("Pending sync jobs not finished", zap.Error(err))
		}
	}()

	if err := tui.Run(ctx, store, wallet); err != nil {
		logger.Error("Terminal UI stopped", zap.Error(err))
	}
}
