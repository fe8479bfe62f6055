package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	. "github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/helper"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

type AuthHandler struct {
	svc       port.AuthService
	validator port.Validator
	logger    *config.Logger
}

func NewAuthHandler(svc port.AuthService, validator port.Validator, logger *config.Logger) *AuthHandler {
	return &AuthHandler{
		svc:       svc,
		validator: validator,
		logger:    logger,
	}
}

func (a *AuthHandler) Register(c *gin.Context) {
	params, ok := bindJSON[request.RegisterRequest](c, a.validator)
	if !ok {
		return
	}

	res, err := a.svc.Register(c.Request.Context(), params)
	if err != nil {
		fail(c, a.logger, "registration failed", err)
		return
	}

	SendSuccess(c, http.StatusCreated, res, "User registered successfully")
}

func (a *AuthHandler) Login(c *gin.Context) {
	params, ok := bindJSON[request.LoginRequest](c, a.validator)
	if !ok {
		return
	}

	res, err := a.svc.Login(c.Request.Context(), params)
	if err != nil {
		fail(c, a.logger, "login failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, res)
}

func (a *AuthHandler) Refresh(c *gin.Context) {
	params, ok := bindJSON[request.RefreshRequest](c, a.validator)
	if !ok {
		return
	}

	res, err := a.svc.Refresh(c.Request.Context(), params.RefreshToken)
	if err != nil {
		fail(c, a.logger, "token refresh failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, res)
}

func (a *AuthHandler) Profile(c *gin.Context) {
	user, err := a.svc.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, a.logger, "profile lookup failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, user)
}
