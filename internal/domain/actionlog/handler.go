package actionlog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nuclibook/nuclibook/internal/platform/db"
	"github.com/nuclibook/nuclibook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/action-log", h.List)
	api.GET("/action-log/:id", h.Get)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	entries, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return db.HTTPError(err)
	}
	if entries == nil {
		entries = []*ActionLog{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, p))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entry, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, entry)
}
