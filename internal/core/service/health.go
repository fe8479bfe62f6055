package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
)

type HealthService struct {
	checks    map[string]port.Pinger
	version   string
	startedAt time.Time
	logger    *zap.Logger
}

// NewHealthService reports readiness from every named dependency in checks.
func NewHealthService(version string, checks map[string]port.Pinger, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HealthService{
		checks:    checks,
		version:   version,
		startedAt: time.Now(),
		logger:    logger,
	}
}

func (hs *HealthService) Liveness(ctx context.Context) response.HealthResponse {
	return response.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(hs.startedAt).Seconds(),
		Version:   hs.version,
	}
}

func (hs *HealthService) Readiness(ctx context.Context) (response.ReadinessResponse, bool) {
	ready := true
	result := response.ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(hs.checks))}

	for name, check := range hs.checks {
		if err := check.Ping(ctx); err != nil {
			hs.logger.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			result.Checks[name] = "down"
			ready = false
			continue
		}

		result.Checks[name] = "up"
	}

	if !ready {
		result.Status = "not_ready"
	}

	return result, ready
}
