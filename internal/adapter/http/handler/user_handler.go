package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	. "github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/helper"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

type UserHandler struct {
	svc       port.UserService
	validator port.Validator
	logger    *config.Logger
}

func NewUserHandler(svc port.UserService, validator port.Validator, logger *config.Logger) *UserHandler {
	return &UserHandler{
		svc:       svc,
		validator: validator,
		logger:    logger,
	}
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	params, ok := bindJSON[request.UpdateUserRequest](c, h.validator)
	if !ok {
		return
	}

	user, err := h.svc.Update(c.Request.Context(), currentUserID(c), params)
	if err != nil {
		fail(c, h.logger, "user update failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, user)
}
