package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordspro/api/internal/platform/auth"
	"github.com/recordspro/api/pkg/pagination"
)

// Handler provides the HTTP surface for patient records.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts patient routes on the supplied group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/details", h.UpdateDetails)
	g.PUT("/:id/medical", h.UpdateMedical)
	g.PUT("/:id/vitals", h.UpdateVitals)
	g.PUT("/:id/status", h.UpdateStatus)
}

// listResponse is the JSON envelope returned by List.
type listResponse struct {
	Patients    []*Patient `json:"patients"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	Total       int        `json:"total"`
}

func (h *Handler) List(c echo.Context) error {
	params := pagination.FromContext(c)
	result, err := h.service.List(c.QueryParam("search"), params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	patients := result.Patients
	if !CanViewMedicalRecords(auth.RoleFromContext(c.Request().Context())) {
		redacted := make([]*Patient, len(patients))
		for i, p := range patients {
			redacted[i] = p.Redacted()
		}
		patients = redacted
	}

	return c.JSON(http.StatusOK, listResponse{
		Patients:    patients,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
		Total:       result.Total,
	})
}

func (h *Handler) Create(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	p, err := h.service.Create(auth.RoleFromContext(c.Request().Context()), payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetByID(c echo.Context) error {
	p, err := h.service.Get(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	if !CanViewMedicalRecords(auth.RoleFromContext(c.Request().Context())) {
		p = p.Redacted()
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	var patch map[string]interface{}
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	p, err := h.service.Update(auth.RoleFromContext(c.Request().Context()), c.Param("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateDetails(c echo.Context) error {
	var details map[string]interface{}
	if err := c.Bind(&details); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	p, err := h.service.UpdateDetails(auth.RoleFromContext(c.Request().Context()), c.Param("id"), details)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateMedical(c echo.Context) error {
	var fields map[string]interface{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	p, err := h.service.UpdateMedical(auth.RoleFromContext(c.Request().Context()), c.Param("id"), fields)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateVitals(c echo.Context) error {
	var body struct {
		Vitals []VitalReading `json:"vitals"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	p, err := h.service.UpdateVitals(auth.RoleFromContext(c.Request().Context()), c.Param("id"), body.Vitals)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var body struct {
		PatientStatus string `json:"patientStatus"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	p, err := h.service.UpdateStatus(auth.RoleFromContext(c.Request().Context()), c.Param("id"), body.PatientStatus)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	err := h.service.Delete(auth.RoleFromContext(c.Request().Context()), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Patient deleted successfully"})
}

// writeError maps domain errors onto the HTTP error contract.
func writeError(c echo.Context, err error) error {
	var permErr *PermissionError
	switch {
	case errors.As(err, &permErr):
		return c.JSON(http.StatusForbidden, map[string]string{"error": permErr.Message})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Patient not found"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
