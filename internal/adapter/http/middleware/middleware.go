package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

// SetupGinMiddleware installs the global chain. Rate limiting is installed
// per route group so it can key on the authenticated user.
func SetupGinMiddleware(router *gin.Engine, cfg config.Config, metrics *telemetry.AppMetrics, logger *config.Logger) {
	httpsEnforcer := config.NewHTTPSEnforcer(cfg.App, logger.Logger.Logger)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(CurrentMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(CORS(cfg.App))

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}

	router.Use(gin.Recovery())
}
