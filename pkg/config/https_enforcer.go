package config

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPSEnforcer redirects plain HTTP API calls to https. Health probes,
// loopback hosts and requests already terminated by a TLS proxy pass through.
type HTTPSEnforcer struct {
	enabled bool
	logger  *zap.Logger
}

func NewHTTPSEnforcer(app AppConfig, logger *zap.Logger) *HTTPSEnforcer {
	return &HTTPSEnforcer{
		enabled: app.EnforceHTTPS,
		logger:  logger,
	}
}

func (he *HTTPSEnforcer) HTTPSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !he.enabled || he.secure(c.Request) || strings.HasPrefix(c.Request.URL.Path, "/health") {
			c.Next()
			return
		}

		target := "https://" + c.Request.Host + c.Request.URL.RequestURI()

		he.logger.Debug("redirecting to https",
			zap.String("method", c.Request.Method),
			zap.String("target", target))

		// 308 keeps the method and body of POST/PATCH calls.
		status := http.StatusPermanentRedirect
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			status = http.StatusMovedPermanently
		}

		c.Redirect(status, target)
		c.Abort()
	}
}

func (he *HTTPSEnforcer) secure(r *http.Request) bool {
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}

	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)

	return ip != nil && ip.IsLoopback()
}
