package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/panjiggm/syntegra-app-sub000/internal/middleware"
	"github.com/panjiggm/syntegra-app-sub000/internal/service"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
)

// SessionHTTP exposes a user's own auth sessions.
type SessionHTTP struct {
	Mgr    *service.SessionManager
	Detail bool
}

func (h *SessionHTTP) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sessions.list")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return transport.Fail(c, http.StatusUnauthorized, transport.CodeMissingToken, "authentication required")
	}

	sessions, err := h.Mgr.ListSessions(ctx, user.ID, middleware.CurrentSessionID(c))
	if err != nil {
		l.Error("list_sessions_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "active sessions", echo.Map{"sessions": sessions})
}

func (h *SessionHTTP) RevokeSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sessions.revoke")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return transport.Fail(c, http.StatusUnauthorized, transport.CodeMissingToken, "authentication required")
	}

	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "sessionId must be a uuid")
	}

	if err := h.Mgr.RevokeSession(ctx, sessionID, user.ID); err != nil {
		l.Warn("revoke_session_failed", "session_id", sessionID, "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "session revoked", nil)
}

func (h *SessionHTTP) RevokeOthers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sessions.revoke_others")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return transport.Fail(c, http.StatusUnauthorized, transport.CodeMissingToken, "authentication required")
	}

	count, err := h.Mgr.RevokeOtherSessions(ctx, user.ID, middleware.CurrentSessionID(c))
	if err != nil {
		l.Error("revoke_others_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "other sessions revoked", echo.Map{"revoked": count})
}
