package user

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordspro/api/internal/platform/auth"
)

// Handler provides the HTTP surface for account management.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts user routes on the supplied group. The /me
// routes are registered before /:id so they are not captured by the
// parameter route.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/users")
	g.GET("/me", h.Me)
	g.PUT("/me/profile", h.UpdateProfile)
	g.PUT("/me/settings", h.UpdateSettings)

	adminOnly := auth.RequireRole(RoleAdmin)
	g.GET("", h.List, adminOnly)
	g.POST("", h.Create, adminOnly)
	g.PUT("/:id", h.AdminUpdate, adminOnly)
	g.PUT("/:id/reset-password", h.ResetPassword, adminOnly)
	g.DELETE("/:id", h.Delete, adminOnly)
}

func (h *Handler) Me(c echo.Context) error {
	u, err := h.service.Get(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Department string `json:"department"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	u, err := h.service.UpdateProfile(auth.UserIDFromContext(c.Request().Context()),
		body.Name, body.Email, body.Phone, body.Department)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var body struct {
		Settings map[string]interface{} `json:"settings"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	settings, err := h.service.UpdateSettings(auth.UserIDFromContext(c.Request().Context()), body.Settings)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Settings updated successfully",
		"settings": settings,
	})
}

func (h *Handler) List(c echo.Context) error {
	users, err := h.service.List()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) Create(c echo.Context) error {
	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Role       string `json:"role"`
		Phone      string `json:"phone"`
		Department string `json:"department"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name, email and password are required"})
	}
	if body.Role != "" && !ValidRole(body.Role) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid role"})
	}

	u, err := h.service.Create(body.Name, body.Email, body.Password, body.Role)
	if err != nil {
		return writeError(c, err)
	}
	if body.Phone != "" || body.Department != "" {
		u, err = h.service.UpdateProfile(u.ID, "", "", body.Phone, body.Department)
		if err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) AdminUpdate(c echo.Context) error {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.Role != "" && !ValidRole(body.Role) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid role"})
	}

	u, err := h.service.AdminUpdate(c.Param("id"), body.Name, body.Email, body.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ResetPassword(c echo.Context) error {
	u, temp, err := h.service.ResetPassword(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":           "Password reset successfully",
		"temporaryPassword": temp,
		"user":              u,
	})
}

func (h *Handler) Delete(c echo.Context) error {
	u, err := h.service.Delete(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User deleted successfully",
		"user":    u,
	})
}

// writeError maps domain errors onto the HTTP error contract.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	case errors.Is(err, ErrEmailTaken):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email already in use"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
