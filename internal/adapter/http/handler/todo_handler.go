package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	. "github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/helper"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/util"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

type TodoHandler struct {
	svc       port.TodoService
	validator port.Validator
	logger    *config.Logger
}

func NewTodoHandler(svc port.TodoService, validator port.Validator, logger *config.Logger) *TodoHandler {
	return &TodoHandler{
		svc:       svc,
		validator: validator,
		logger:    logger,
	}
}

func (t *TodoHandler) Create(c *gin.Context) {
	params, ok := bindJSON[request.CreateTodoRequest](c, t.validator)
	if !ok {
		return
	}

	todo, err := t.svc.Create(c.Request.Context(), currentUserID(c), params)
	if err != nil {
		fail(c, t.logger, "todo create failed", err)
		return
	}

	SendSuccess(c, http.StatusCreated, todo)
}

func (t *TodoHandler) FindAll(c *gin.Context) {
	query, err := util.QueryToStruct[request.TodoQuery](c)
	if err != nil {
		SendBadRequestError(c, "query", "Invalid query parameters")
		return
	}

	if err := t.validator.ValidateStruct(query); err != nil {
		SendValidationError(c, t.validator.FormatValidationErrors(err))
		return
	}

	trace.SpanFromContext(c.Request.Context()).SetAttributes(
		attribute.Int("pagination.page", query.Page),
		attribute.Int("pagination.limit", query.Limit),
	)

	page, err := t.svc.FindAll(c.Request.Context(), currentUserID(c), query)
	if err != nil {
		fail(c, t.logger, "todo list failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, page)
}

func (t *TodoHandler) Stats(c *gin.Context) {
	stats, err := t.svc.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, t.logger, "todo stats failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, stats)
}

func (t *TodoHandler) Overdue(c *gin.Context) {
	todos, err := t.svc.FindOverdue(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, t.logger, "overdue lookup failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, todos)
}

func (t *TodoHandler) Blockchain(c *gin.Context) {
	todos, err := t.svc.FindBlockchainTodos(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, t.logger, "blockchain todo lookup failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, todos)
}

func (t *TodoHandler) FindOne(c *gin.Context) {
	todo, err := t.svc.FindOne(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		fail(c, t.logger, "todo lookup failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, todo)
}

func (t *TodoHandler) Update(c *gin.Context) {
	params, ok := bindJSON[request.UpdateTodoRequest](c, t.validator)
	if !ok {
		return
	}

	todo, err := t.svc.Update(c.Request.Context(), c.Param("id"), currentUserID(c), params)
	if err != nil {
		fail(c, t.logger, "todo update failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, todo)
}

func (t *TodoHandler) Toggle(c *gin.Context) {
	todo, err := t.svc.Toggle(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		fail(c, t.logger, "todo toggle failed", err)
		return
	}

	SendSuccess(c, http.StatusOK, todo)
}

func (t *TodoHandler) Remove(c *gin.Context) {
	if err := t.svc.Remove(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		fail(c, t.logger, "todo delete failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}
