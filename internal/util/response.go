package util

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/response"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponseFormat struct {
	Code    int
	Message string
	Data    any
	Meta    any
}

type ErrorResponseFormat struct {
	Code       int
	ErrorCode  string
	Message    string
	DevMessage string
	Details    any
	Trace      string
}

type FormError struct {
	Errors  map[string]string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form error: %s", e.Message)
}

func NewFormError(message string, errors map[string]string) *FormError {
	return &FormError{
		Message: message,
		Errors:  errors,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs struct tag validation and reports failures per JSON field.
func ValidateStruct(s any) *FormError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewFormError(err.Error(), nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return NewFormError("validation failed", fields)
}

// SuccessResponse sends the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(response.Success{
		Success: true,
		Message: params.Message,
		Data:    params.Data,
		Meta:    params.Meta,
	})
}

// ErrorResponse sends the standard error envelope. Error details are only
// exposed outside production.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	body := response.Error{
		Success:   false,
		Message:   params.Message,
		ErrorCode: params.ErrorCode,
	}
	if params.Details != nil {
		body.Details = params.Details
	}
	if !config.LoadAppConfig().IsProduction() {
		if len(errs) > 0 && errs[0] != nil {
			body.DevMessage = errs[0].Error()
			body.Trace = string(debug.Stack())
		}
		if params.DevMessage != "" {
			body.DevMessage = params.DevMessage
		}
		if params.Trace != "" {
			body.Trace = params.Trace
		}
	}

	code := params.Code
	if code == 0 {
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(body)
}

// DomainErrorResponse maps err through the domain error table.
func DomainErrorResponse(c *fiber.Ctx, message string, err error) error {
	var upstream *domain.UpstreamError
	var details any
	if errors.As(err, &upstream) && upstream.StatusCode != 0 {
		details = fiber.Map{"service": upstream.Service, "upstream_status": upstream.StatusCode}
	}
	return ErrorResponse(c, ErrorResponseFormat{
		Code:      domain.HTTPStatus(err),
		ErrorCode: domain.ErrorCode(err),
		Message:   message,
		Details:   details,
	}, err)
}
