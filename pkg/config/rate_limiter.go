package config

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg"
)

type RateLimitEndpointConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) string
}

// RateLimiter is a fixed-window limiter keyed by route and caller.
type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]RateLimitEndpointConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.RWMutex
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	configs := map[string]RateLimitEndpointConfig{
		"POST /auth/register": {Requests: 5, Window: time.Minute, KeyFunc: pkg.GetClientIP},
		"POST /auth/login":    {Requests: 10, Window: time.Minute, KeyFunc: pkg.GetClientIP},
		"POST /auth/refresh":  {Requests: 20, Window: time.Minute, KeyFunc: pkg.GetClientIP},
		"GET /todos":          {Requests: 100, Window: time.Minute, KeyFunc: userKey},
		"POST /todos":         {Requests: 20, Window: time.Minute, KeyFunc: userKey},
		"PATCH /todos/:id":    {Requests: 30, Window: time.Minute, KeyFunc: userKey},
		"DELETE /todos/:id":   {Requests: 10, Window: time.Minute, KeyFunc: userKey},
		"/todos":              {Requests: 100, Window: time.Minute, KeyFunc: userKey},
		"default":             {Requests: 60, Window: time.Minute, KeyFunc: pkg.GetClientIP},
	}

	return &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = normalizePath(c.Request.URL.Path)
		}

		methodPath := c.Request.Method + " " + path
		config := rl.lookup(methodPath, path)
		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, config.KeyFunc(c))

		allowed, remaining, resetTime := rl.checkRateLimit(key, config)

		keyType := "ip"
		if strings.Contains(key, "user_") {
			keyType = "user"
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, keyType)
			}

			rl.logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", config.Requests),
				zap.Duration("window", config.Window))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{
				Error: response.ResponseError{
					Code:   "RATE_LIMITED",
					Errors: []response.ValidationError{},
					Details: gin.H{
						"message":     fmt.Sprintf("Too many requests. Limit: %d per %v", config.Requests, config.Window),
						"retry_after": int(time.Until(resetTime).Seconds()),
					},
				},
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, keyType)
		}

		c.Next()
	}
}

func (rl *RateLimiter) lookup(methodPath, path string) RateLimitEndpointConfig {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	if config, ok := rl.config[methodPath]; ok {
		return config
	}

	if config, ok := rl.config[path]; ok {
		return config
	}

	return rl.config["default"]
}

func (rl *RateLimiter) checkRateLimit(key string, config RateLimitEndpointConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if entry, found := rl.cache.Get(key); found {
		current := entry.(RateLimitEntry)

		if now.Before(current.ResetTime) {
			if current.Count >= config.Requests {
				return false, 0, current.ResetTime
			}

			current.Count++
			rl.cache.Set(key, current, time.Until(current.ResetTime))

			return true, config.Requests - current.Count, current.ResetTime
		}
	}

	resetTime := now.Add(config.Window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, config.Window)

	return true, config.Requests - 1, resetTime
}

// normalizePath maps a raw /todos/<id>[/...] path onto its route pattern.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")

	if len(parts) >= 3 && parts[1] == "todos" {
		switch parts[2] {
		case "stats", "overdue", "blockchain":
		default:
			parts[2] = ":id"
		}
	}

	return strings.Join(parts, "/")
}

func userKey(c *gin.Context) string {
	if userID, exists := c.Get("x-user-id"); exists {
		return fmt.Sprintf("user_%v", userID)
	}

	return pkg.GetClientIP(c)
}

func (rl *RateLimiter) SetConfig(path string, config RateLimitEndpointConfig) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.config[path] = config
}

func (rl *RateLimiter) GetStats() map[string]any {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	return map[string]any{
		"active_entries": rl.cache.ItemCount(),
		"configs":        len(rl.config),
	}
}
