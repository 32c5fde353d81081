package therapy

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nuclibook/nuclibook/internal/platform/auth"
	"github.com/nuclibook/nuclibook/internal/platform/db"
	"github.com/nuclibook/nuclibook/internal/platform/render"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/therapies", h.ListDisplay)
	api.GET("/therapies/all", h.List)
	api.GET("/therapies/:id", h.GetDisplay)
	api.GET("/therapies/:id/booking-pattern", h.GetBookingPattern)
	api.GET("/therapies/:id/patient-questions", h.GetPatientQuestions)
	api.GET("/therapies/:id/camera-types", h.GetCameraTypes)

	write := api.Group("", auth.RequireStaff())
	write.POST("/therapies", h.Create)
	write.PUT("/therapies/:id", h.Update)
	write.DELETE("/therapies/:id", h.Delete)
	write.POST("/therapies/:id/disable", h.Disable)
	write.PUT("/therapies/:id/booking-pattern", h.ReplaceBookingPattern)
	write.PUT("/therapies/:id/patient-questions", h.ReplacePatientQuestions)
	write.PUT("/therapies/:id/camera-types", h.SetCameraTypes)
}

func parseID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Display --

func (h *Handler) ListDisplay(c echo.Context) error {
	fields, err := h.svc.DisplayAll(c.Request().Context())
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, fields)
}

func (h *Handler) GetDisplay(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	fields, err := h.svc.Display(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	// ?format=legacy serves the flat map the old page templates read.
	if c.QueryParam("format") == "legacy" {
		return c.JSON(http.StatusOK, fields.Flatten())
	}
	return c.JSON(http.StatusOK, fields)
}

func (h *Handler) List(c echo.Context) error {
	therapies, err := h.svc.List(c.Request().Context(), c.QueryParam("enabled") != "false")
	if err != nil {
		return db.HTTPError(err)
	}
	if therapies == nil {
		therapies = []*Therapy{}
	}
	return c.JSON(http.StatusOK, therapies)
}

func (h *Handler) GetBookingPattern(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sections, err := h.svc.BookingPattern(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, sections)
}

func (h *Handler) GetPatientQuestions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	questions, err := h.svc.PatientQuestions(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, questions)
}

func (h *Handler) GetCameraTypes(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	types, err := h.svc.CameraTypes(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, types)
}

// -- Write --

func (h *Handler) Create(c echo.Context) error {
	var t Therapy
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &t); err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Update binds the request onto the stored therapy, so omitted fields keep
// their current values.
func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	if err := c.Bind(t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	if err := h.svc.Update(c.Request().Context(), t); err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return db.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
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

func (h *Handler) ReplaceBookingPattern(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Sections []SectionInput `json:"sections"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sections, err := h.svc.ReplaceBookingPattern(c.Request().Context(), id, body.Sections)
	if err != nil {
		return db.HTTPError(err)
	}
	f := render.Fields{}
	f.Custom(FieldBookingPatternSections, BookingPatternCompactForm(sections))
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ReplacePatientQuestions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Questions []string `json:"questions"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	questions, err := h.svc.ReplacePatientQuestions(c.Request().Context(), id, body.Questions)
	if err != nil {
		return db.HTTPError(err)
	}
	return c.JSON(http.StatusOK, questions)
}

func (h *Handler) SetCameraTypes(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		CameraTypeIDs []int `json:"camera_type_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetCameraTypes(c.Request().Context(), id, body.CameraTypeIDs); err != nil {
		return db.HTTPError(err)
	}
	types, err := h.svc.CameraTypes(c.Request().Context(), id)
	if err != nil {
		return db.HTTPError(err)
	}
	f := render.Fields{}
	f.IDList(FieldCameraTypeIDs, CameraTypeIDList(types))
	f.Plain(FieldCameraTypeSummary, SummarizeCameraTypes(id, types).HTML())
	return c.JSON(http.StatusOK, f)
}
