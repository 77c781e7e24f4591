package transport

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Error codes shared across handlers and middleware.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeMissingToken       = "MISSING_TOKEN"
	CodeEmptyToken         = "EMPTY_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Envelope is the uniform response shape of every endpoint.
type Envelope struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Data      any          `json:"data,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
	Timestamp string       `json:"timestamp"`
}

func stamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func Success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: stamp(),
	})
}

func Fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Envelope{
		Success:   false,
		Message:   message,
		Errors:    []FieldError{{Message: message, Code: code}},
		Timestamp: stamp(),
	})
}

func FailFields(c echo.Context, status int, message string, errs []FieldError) error {
	return c.JSON(status, Envelope{
		Success:   false,
		Message:   message,
		Errors:    errs,
		Timestamp: stamp(),
	})
}
