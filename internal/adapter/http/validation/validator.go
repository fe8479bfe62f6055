package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
)

// RequestValidator checks `validate` tags and reports fields by their json name.
type RequestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var _ port.Validator = (*RequestValidator)(nil)

func New() *RequestValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = field.Tag.Get("form")
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)

	translator, found := uni.GetTranslator("en")
	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	v := &RequestValidator{validate: validate, translator: translator}
	v.addCustomTranslations()

	return v
}

func (v *RequestValidator) addCustomTranslations() {
	v.register("required", "{0} is required", func(fe validator.FieldError) []string {
		return []string{fe.Field()}
	})

	v.register("oneof", "{0} must be one of: {1}", func(fe validator.FieldError) []string {
		return []string{fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")}
	})
}

func (v *RequestValidator) register(tag, text string, params func(validator.FieldError) []string) {
	_ = v.validate.RegisterTranslation(tag, v.translator, func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag, params(fe)...)
		return t
	})
}

func (v *RequestValidator) ValidateStruct(s any) error {
	return v.validate.Struct(s)
}

func (v *RequestValidator) FormatValidationErrors(err error) []response.ValidationError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make([]response.ValidationError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		out = append(out, response.ValidationError{
			Field:   fieldPath(fieldError),
			Message: fieldError.Translate(v.translator),
		})
	}

	return out
}

// fieldPath drops the struct name from the namespace: CreateTodoRequest.tags[0] -> tags[0].
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
