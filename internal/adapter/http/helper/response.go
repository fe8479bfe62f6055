package helper

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	response := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		response.Message = message[0]
	}

	c.JSON(statusCode, response)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	if errors == nil {
		errors = []response.ValidationError{}
	}

	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, errors []response.ValidationError) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", errors)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	SendValidationError(c, []response.ValidationError{{Field: field, Message: message}})
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendUnauthorizedError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "auth",
			Message: message,
		},
	}

	SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

func SendConflictError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusConflict, "CONFLICT", errors)
}

// SendDomainError maps a service error onto its HTTP status. Unknown errors
// become a 500 without leaking their text.
func SendDomainError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		SendNotFoundError(c, detail(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrConflict):
		SendConflictError(c, detail(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrUnauthorized):
		SendUnauthorizedError(c, detail(err, domain.ErrUnauthorized))
	case errors.Is(err, domain.ErrValidation):
		SendBadRequestError(c, "request", detail(err, domain.ErrValidation))
	default:
		SendInternalError(c, "Internal server error")
	}
}

// detail strips the sentinel prefix from "sentinel: message".
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
