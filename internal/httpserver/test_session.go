package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/panjiggm/syntegra-app-sub000/internal/service"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/internal/util"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
)

type TestSessionHTTP struct {
	Svc    *service.TestSessionService
	Detail bool
}

func (h *TestSessionHTTP) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	session, err := h.Svc.GetSession(ctx, id)
	if err != nil {
		l.Warn("get_session_failed", "id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "session", session)
}

// GetSessionByCode is the participant-facing lookup used before login.
func (h *TestSessionHTTP) GetSessionByCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.get_by_code")

	session, err := h.Svc.GetSessionByCode(ctx, c.Param("code"))
	if err != nil {
		l.Warn("get_session_by_code_failed", "code", c.Param("code"), "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "session", session)
}

func (h *TestSessionHTTP) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListSessions(ctx, c.QueryParam("status"), offset, limit)
	if err != nil {
		l.Error("list_sessions_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "sessions", echo.Map{
		"items": items,
		"meta":  transport.NewPageMeta(page, limit, total),
	})
}

func (h *TestSessionHTTP) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.create")

	var req transport.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "invalid body")
	}

	session, err := h.Svc.CreateSession(ctx, req)
	if err != nil {
		l.Warn("create_session_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	l.Info("session_created", "id", session.ID, "code", session.SessionCode)
	return transport.Success(c, http.StatusCreated, "session created", session)
}

func (h *TestSessionHTTP) PatchSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.patch")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	var req transport.PatchSessionRequest
	if err := c.Bind(&req); err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "invalid body")
	}

	session, err := h.Svc.PatchSession(ctx, id, req)
	if err != nil {
		l.Warn("patch_session_failed", "id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "session updated", session)
}

func (h *TestSessionHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.update_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "status is required")
	}

	session, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		l.Warn("update_status_failed", "id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "status updated", session)
}

func (h *TestSessionHTTP) DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	if err := h.Svc.DeleteSession(ctx, id); err != nil {
		l.Warn("delete_session_failed", "id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "session deleted", nil)
}

// Sweep runs the on-demand status update over all sessions.
func (h *TestSessionHTTP) Sweep(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.sweep")

	result, err := h.Svc.Sweep(ctx)
	if err != nil {
		l.Error("sweep_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "sweep completed", result)
}
