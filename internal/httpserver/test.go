package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/service"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/internal/util"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
)

type TestHTTP struct {
	Svc    *service.TestService
	Detail bool
}

func (h *TestHTTP) GetTest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "test.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	test, err := h.Svc.GetTest(ctx, id)
	if err != nil {
		l.Warn("get_test_failed", "id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "test", test)
}

func (h *TestHTTP) ListTests(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "test.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	filter := repo.TestFilter{
		Category:   c.QueryParam("category"),
		ModuleType: c.QueryParam("module_type"),
		Query:      c.QueryParam("q"),
	}

	total, items, err := h.Svc.ListTests(ctx, filter, offset, limit)
	if err != nil {
		l.Error("list_tests_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	return transport.Success(c, http.StatusOK, "tests", echo.Map{
		"items": items,
		"meta":  transport.NewPageMeta(page, limit, total),
	})
}

func (h *TestHTTP) CreateTest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "test.create")

	var req transport.CreateTestRequest
	if err := c.Bind(&req); err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "invalid body")
	}

	test, err := h.Svc.CreateTest(ctx, req)
	if err != nil {
		l.Warn("create_test_failed", "error", err)
		return mapServiceError(c, err, h.Detail)
	}

	l.Info("test_created", "id", test.ID)
	return transport.Success(c, http.StatusCreated, "test created", test)
}

func (h *TestHTTP) PatchTest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "test.patch")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	var req transport.PatchTestRequest
	if err := c.Bind(&req); err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "invalid body")
	}

	test, err := h.Svc.PatchTest(ctx, id, req)
	if err != nil {
		l.Warn("patch_test_failed", "id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "test updated", test)
}

func (h *TestHTTP) DeleteTest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "test.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return transport.Fail(c, http.StatusBadRequest, transport.CodeValidation, "id must be a uuid")
	}

	if err := h.Svc.DeleteTest(ctx, id); err != nil {
		l.Warn("delete_test_failed", "id", id, "error", err)
		return mapServiceError(c, err, h.Detail)
	}
	return transport.Success(c, http.StatusOK, "test deleted", nil)
}
