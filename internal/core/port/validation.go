package port

import "github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"

type Validator interface {
	ValidateStruct(s any) error
	FormatValidationErrors(err error) []response.ValidationError
}
