package cameratype

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
	api.GET("/camera-types", h.Page)
	api.GET("/camera-types/:id", h.Get)

	write := api.Group("", auth.RequireStaff())
	write.POST("/camera-types", h.Create)
	write.PUT("/camera-types/:id", h.Update)
	write.POST("/camera-types/:id/disable", h.Disable)
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

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ct, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *Handler) Create(c echo.Context) error {
	var ct CameraType
	if err := c.Bind(&ct); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &ct); err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, ct)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Label string `json:"label"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateLabel(c.Request().Context(), id, body.Label); err != nil {
		return db.HTTPError(err)
	}
	ct, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ct)
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
