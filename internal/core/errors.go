// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrConflict     = errors.New("conflict")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenInvalid = errors.New("token invalid")
)

// AppError is the JSON error envelope every handler returns. Code is a
// stable machine-readable string, Status the HTTP status it maps to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NewAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func BadRequestError(message string) *AppError {
	return NewAppError("bad_request", message, http.StatusBadRequest)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError("unauthorized", message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError("forbidden", message, http.StatusForbidden)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		"not_found",
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
	)
}

func ConflictError(message string) *AppError {
	return NewAppError("conflict", message, http.StatusConflict)
}

func ValidationError(message string) *AppError {
	return NewAppError(
		"validation_failed",
		message,
		http.StatusUnprocessableEntity,
	)
}

func InternalError() *AppError {
	return NewAppError(
		"internal_error",
		"an unexpected error occurred, please retry",
		http.StatusInternalServerError,
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		"token_expired",
		"access token has expired",
		http.StatusUnauthorized,
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		"token_revoked",
		"access token has been revoked",
		http.StatusUnauthorized,
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		"token_invalid",
		"access token is invalid",
		http.StatusUnauthorized,
	)
}

// FromError maps the sentinel taxonomy onto an AppError. Unknown errors
// collapse into a generic 500 so internals never leak to callers.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NotFoundError("resource")
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("authentication required")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("insufficient permissions")
	case errors.Is(err, ErrInvalidInput):
		return ValidationError(err.Error())
	case errors.Is(err, ErrDuplicateKey), errors.Is(err, ErrConflict):
		return ConflictError(err.Error())
	case errors.Is(err, ErrTokenExpired):
		return TokenExpiredError()
	case errors.Is(err, ErrTokenRevoked):
		return TokenRevokedError()
	case errors.Is(err, ErrTokenInvalid):
		return TokenInvalidError()
	default:
		return InternalError()
	}
}

func FormatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request"
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, formatFieldError(fieldErr))
	}

	return strings.Join(messages, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
