package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panjiggm/syntegra-app-sub000/internal/service"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
)

// mapServiceError translates service sentinels to the uniform envelope.
// Outside production, detail carries the underlying error string.
func mapServiceError(c echo.Context, err error, detail bool) error {
	var (
		status int
		code   string
		msg    string
	)

	switch {
	case errors.Is(err, service.ErrValidation):
		status, code, msg = http.StatusBadRequest, transport.CodeValidation, "invalid request"
	case errors.Is(err, service.ErrInvalidTransition):
		status, code, msg = http.StatusBadRequest, transport.CodeValidation, "invalid status transition"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code, msg = http.StatusUnauthorized, transport.CodeInvalidCredentials, "invalid credentials"
	case errors.Is(err, service.ErrInvalidRefreshToken):
		status, code, msg = http.StatusUnauthorized, transport.CodeInvalidToken, "invalid or expired refresh token"
	case errors.Is(err, service.ErrAccountInactive):
		status, code, msg = http.StatusUnauthorized, transport.CodeAccountDeactivated, "account is deactivated"
	case errors.Is(err, service.ErrAccountLocked):
		status, code, msg = http.StatusLocked, transport.CodeAccountLocked, "account temporarily locked"
	case errors.Is(err, service.ErrSessionForbidden):
		status, code, msg = http.StatusForbidden, transport.CodeForbidden, "session not owned by user"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		status, code, msg = http.StatusNotFound, transport.CodeNotFound, "not found"
	case errors.Is(err, service.ErrConflict):
		status, code, msg = http.StatusConflict, transport.CodeConflict, "conflict"
	default:
		status, code, msg = http.StatusInternalServerError, transport.CodeInternal, "internal server error"
	}

	if detail {
		msg = err.Error()
	}
	return transport.Fail(c, status, code, msg)
}
