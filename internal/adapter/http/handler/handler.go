package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	. "github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/http/helper"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/auth"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
	. "github.com/Kaybarax/todo-list-turborepo-sub002/pkg/tracing"
)

func currentUserID(c *gin.Context) string {
	return c.GetString(auth.UserIDKey)
}

// bindJSON decodes and validates the body. It answers the request itself and
// returns false when the body is unusable.
func bindJSON[T any](c *gin.Context, validator port.Validator) (T, bool) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "body", "Invalid request body")
		return params, false
	}

	if err := validator.ValidateStruct(params); err != nil {
		SendValidationError(c, validator.FormatValidationErrors(err))
		return params, false
	}

	return params, true
}

// fail reports err to the caller. Errors that are not domain errors are
// logged and recorded on the request span.
func fail(c *gin.Context, logger *config.Logger, message string, err error) {
	if !isDomainError(err) {
		span := trace.SpanFromContext(c.Request.Context())
		AnnotateUser(span, currentUserID(c))
		AddSpanError(span, err)
		logger.Ctx(c.Request.Context()).Error(message,
			zap.Error(err),
			zap.String("user_id", currentUserID(c)),
		)
	}

	SendDomainError(c, err)
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrValidation)
}
