package reports

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordspro/api/internal/platform/auth"
)

// Handler provides the HTTP surface for reports.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts report routes on the supplied group. The
// dashboard is open to every authenticated role; the rest narrows.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/patients", h.Patients, auth.RequireRole("admin", "doctor"))
	g.GET("/users", h.Users, auth.RequireRole("admin"))
	g.GET("/export/patients", h.ExportPatients, auth.RequireRole("admin"))
}

func (h *Handler) Dashboard(c echo.Context) error {
	stats, err := h.service.Dashboard()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) Patients(c echo.Context) error {
	report, err := h.service.Patients(
		c.QueryParam("startDate"),
		c.QueryParam("endDate"),
		c.QueryParam("gender"),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) Users(c echo.Context) error {
	report, err := h.service.UserActivity()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ExportPatients(c echo.Context) error {
	if c.QueryParam("format") == "csv" {
		csv, err := h.service.ExportCSV()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		c.Response().Header().Set("Content-Disposition", "attachment; filename=patients.csv")
		return c.Blob(http.StatusOK, "text/csv", []byte(csv))
	}

	rows, err := h.service.Export()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}
