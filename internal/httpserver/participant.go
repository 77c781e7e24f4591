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

type ParticipantHTTP struct {
	Svc    *service.ParticipantService
	Detail bool
}

func (h *ParticipantHTTP) Invite(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "participant.invite")

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	var req transport.InviteParticipantRequest
	if err := c.Bind(&req); err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "invalid body")
	}

	res, err := h.Svc.Invite(ctx, sessionID, req)
	if err != nil {
		l.Warn("invite_failed", "session_id", sessionID, "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusCreated, "participant invited", res)
}

func (h *ParticipantHTTP) ListParticipants(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "participant.list")

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListParticipants(ctx, sessionID, c.QueryParam("status"), offset, limit)
	if err != nil {
		l.Error("list_participants_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "participants", echo.Map{
		"items": items,
		"meta":  transport.NewPageMeta(page, limit, total),
	})
}

func (h *ParticipantHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "participant.update_status")

	id, err := uuid.Parse(c.Param("participantId"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "participantId must be a uuid")
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "status is required")
	}

	p, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		l.Warn("update_status_failed", "participant_id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "status updated", p)
}

func (h *ParticipantHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "participant.remove")

	id, err := uuid.Parse(c.Param("participantId"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "participantId must be a uuid")
	}

	if err := h.Svc.RemoveParticipant(ctx, id); err != nil {
		l.Warn("remove_failed", "participant_id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "participant removed", nil)
}

// ListMine returns the participations of the user named in the path; the
// ownership middleware has already ensured the caller may see them.
func (h *ParticipantHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "participant.list_mine")

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "userId must be a uuid")
	}

	items, err := h.Svc.ListByUser(ctx, userID)
	if err != nil {
		l.Error("list_mine_failed", "user_id", userID, "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "participations", echo.Map{"items": items})
}

// AccessByLink resolves a unique invite link token to the participant and
// the session it belongs to.
func (h *ParticipantHTTP) AccessByLink(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "participant.access_by_link")

	token := c.Param("token")
	if token == "" {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "token is required")
	}

	p, session, err := h.Svc.GetByLinkToken(ctx, token)
	if err != nil {
		l.Warn("access_by_link_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "participant access", echo.Map{
		"participant": p,
		"session":     session,
	})
}

// Search queries the participant index across sessions.
func (h *ParticipantHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "participant.search")

	q := c.QueryParam("q")
	if q == "" {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "q is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, docs, err := h.Svc.Search(ctx, q, from, limit)
	if err != nil {
		l.Error("search_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "search results", echo.Map{
		"items": docs,
		"meta":  transport.NewPageMeta(page, limit, total),
	})
}
