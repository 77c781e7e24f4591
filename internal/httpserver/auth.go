package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panjiggm/syntegra-app-sub000/internal/middleware"
	"github.com/panjiggm/syntegra-app-sub000/internal/service"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService

	// Detail includes underlying error strings in responses; off in
	// production.
	Detail bool
}

func (h *AuthHTTP) AdminLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.admin_login")

	var req transport.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "invalid body")
	}

	res, err := h.Svc.AdminLogin(ctx, req.Identifier, req.Password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		l.Warn("login_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "login successful", res)
}

func (h *AuthHTTP) ParticipantLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.participant_login")

	var req transport.ParticipantLoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "invalid body")
	}

	res, err := h.Svc.ParticipantLogin(ctx, req.Phone, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		l.Warn("login_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "login successful", res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		l.Warn("refresh_error", "status", 400, "error", err)
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "refresh_token is required")
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		l.Warn("refresh_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "token refreshed", echo.Map{"tokens": pair})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return transport.Fail(c, http.StatusUnauthorized, transport.CodeMissingToken, "authentication required")
	}
	return transport.Success(c, http.StatusOK, "profile", echo.Map{"user": user})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return transport.Fail(c, http.StatusUnauthorized, transport.CodeMissingToken, "authentication required")
	}

	var req transport.LogoutRequest
	_ = c.Bind(&req) // body is optional

	if err := h.Svc.Logout(ctx, user.ID, middleware.CurrentSessionID(c), req.AllDevices); err != nil {
		l.Error("logout_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return transport.Fail(c, http.StatusUnauthorized, transport.CodeMissingToken, "authentication required")
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "invalid body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return transport.FailFields(c, http.StatusBadRequest, "invalid body", []transport.FieldError{
			{Field: "current_password", Message: "required", Code: transport.CodeValidation},
			{Field: "new_password", Message: "required", Code: transport.CodeValidation},
		})
	}

	if err := h.Svc.ChangePassword(ctx, user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		l.Warn("change_password_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "password changed, all sessions revoked", nil)
}
