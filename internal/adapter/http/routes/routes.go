package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/handler"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/middleware"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/auth"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

type HandlersConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
	Tokens        port.TokenIssuer
}

func SetupRouter(handlers HandlersConfig, cfg config.Config, metrics *telemetry.AppMetrics, logger *config.Logger) *gin.Engine {
	router := gin.New()

	middleware.SetupGinMiddleware(router, cfg, metrics, logger)

	var limiter gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter = config.NewRateLimiter(logger.Logger.Logger, metrics).RateLimitMiddleware()
	}

	if handlers.HealthHandler != nil {
		setupHealthRoutes(router, handlers.HealthHandler)
	}

	if handlers.AuthHandler != nil {
		setupPublicRoutes(router, handlers.AuthHandler, limiter)
	}

	setupProtectedRoutes(router, handlers, limiter)

	return router
}

func setupHealthRoutes(router *gin.Engine, healthHandler *handler.HealthHandler) {
	router.GET("/health", healthHandler.Liveness)
	router.GET("/health/ready", healthHandler.Readiness)
}

func setupPublicRoutes(router *gin.Engine, authHandler *handler.AuthHandler, limiter gin.HandlerFunc) {
	public := router.Group("/auth")
	if limiter != nil {
		public.Use(limiter)
	}
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/refresh", authHandler.Refresh)
	}
}

func setupProtectedRoutes(router *gin.Engine, handlers HandlersConfig, limiter gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(auth.GinJwtMiddleware(handlers.Tokens))
	if limiter != nil {
		protected.Use(limiter)
	}

	if h := handlers.AuthHandler; h != nil {
		protected.GET("/auth/profile", h.Profile)
	}

	if h := handlers.UserHandler; h != nil {
		protected.PATCH("/users/me", h.UpdateMe)
	}

	if h := handlers.TodoHandler; h != nil {
		protected.POST("/todos", h.Create)
		protected.GET("/todos", h.FindAll)
		protected.GET("/todos/stats", h.Stats)
		protected.GET("/todos/overdue", h.Overdue)
		protected.GET("/todos/blockchain", h.Blockchain)
		protected.GET("/todos/:id", h.FindOne)
		protected.PATCH("/todos/:id", h.Update)
		protected.DELETE("/todos/:id", h.Remove)
		protected.PATCH("/todos/:id/toggle", h.Toggle)
	}
}
