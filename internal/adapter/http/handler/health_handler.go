package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
)

type HealthHandler struct {
	svc port.HealthService
}

func NewHealthHandler(svc port.HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Liveness(c.Request.Context()))
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	res, ready := h.svc.Readiness(c.Request.Context())

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, res)
}
