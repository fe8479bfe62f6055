package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/routes"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

// NewRouter builds the gin engine for an already wired container.
func NewRouter(container *Container, cfg config.Config, metrics *telemetry.AppMetrics, logger *config.Logger) *gin.Engine {
	return routes.SetupRouter(routes.HandlersConfig{
		AuthHandler:   container.AuthHandler,
		UserHandler:   container.UserHandler,
		TodoHandler:   container.TodoHandler,
		HealthHandler: container.HealthHandler,
		Tokens:        container.Tokens,
	}, cfg, metrics, logger)
}

// StartServer serves the API until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func StartServer(ctx context.Context, cfg config.Config, probe port.Telemetry, metrics *telemetry.AppMetrics, logger *config.Logger) error {
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := NewContainer(ctx, cfg, probe, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      NewRouter(container, cfg, metrics, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("Server starting",
		zap.String("port", cfg.App.Port),
		zap.String("environment", cfg.App.Env),
		zap.String("database", cfg.Database.Driver),
		zap.String("cache", cfg.Cache.Driver),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Bool("https_enforced", cfg.App.EnforceHTTPS),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
