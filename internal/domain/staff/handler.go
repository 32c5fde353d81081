package staff

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nuclibook/nuclibook/internal/platform/auth"
	"github.com/nuclibook/nuclibook/internal/platform/db"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/staff", h.Page)
	api.GET("/staff/all", h.ListStaff)
	api.GET("/staff/:id", h.GetStaff)
	api.GET("/staff-roles", h.ListRoles)

	write := api.Group("", auth.RequireStaff())
	write.POST("/staff", h.CreateStaff)
	write.PUT("/staff/:id", h.UpdateStaff)
	write.POST("/staff/:id/disable", h.DisableStaff)
	write.POST("/staff-roles", h.CreateRole)
}

func parseID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Page(c echo.Context) error {
	page, err := h.svc.Page(c.Request().Context())
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) ListStaff(c echo.Context) error {
	enabledOnly := c.QueryParam("enabled") != "false"
	members, err := h.svc.ListStaff(c.Request().Context(), enabledOnly)
	if err != nil {
		return db.HTTPError(err)
	}
	if members == nil {
		members = []*Staff{}
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) GetStaff(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	st, err := h.svc.GetStaff(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) CreateStaff(c echo.Context) error {
	var st Staff
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateStaff(c.Request().Context(), &st); err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) UpdateStaff(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var st Staff
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st.ID = id
	if err := h.svc.UpdateStaff(c.Request().Context(), &st); err != nil {
		return db.HTTPError(err)
	}
	updated, err := h.svc.GetStaff(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DisableStaff(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DisableStaff(c.Request().Context(), id); err != nil {
		return db.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRoles(c echo.Context) error {
	enabledOnly := c.QueryParam("enabled") != "false"
	roles, err := h.svc.ListRoles(c.Request().Context(), enabledOnly)
	if err != nil {
		return db.HTTPError(err)
	}
	if roles == nil {
		roles = []*StaffRole{}
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *Handler) CreateRole(c echo.Context) error {
	var role StaffRole
	if err := c.Bind(&role); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRole(c.Request().Context(), &role); err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, role)
}
