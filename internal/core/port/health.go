package port

import (
	"context"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService interface {
	Liveness(ctx context.Context) response.HealthResponse
	Readiness(ctx context.Context) (response.ReadinessResponse, bool)
}
