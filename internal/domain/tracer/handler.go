package tracer

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
	api.GET("/tracers", h.List)
	api.GET("/tracers/:id", h.Get)

	write := api.Group("", auth.RequireStaff())
	write.POST("/tracers", h.Create)
	write.PUT("/tracers/:id", h.Update)
	write.POST("/tracers/:id/disable", h.Disable)
}

func parseID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	tracers, err := h.svc.List(c.Request().Context(), c.QueryParam("enabled") != "false")
	if err != nil {
		return db.HTTPError(err)
	}
	if tracers == nil {
		tracers = []*Tracer{}
	}
	return c.JSON(http.StatusOK, tracers)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Create(c echo.Context) error {
	var t Tracer
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &t); err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var t Tracer
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	if err := h.svc.Update(c.Request().Context(), &t); err != nil {
		return db.HTTPError(err)
	}
	updated, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Disable(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Disable(c.Request().Context(), id); err != nil {
		return db.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
