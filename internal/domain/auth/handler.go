package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordspro/api/internal/domain/user"
	platformauth "github.com/recordspro/api/internal/platform/auth"
)

// Handler provides the HTTP surface for credential flows.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts auth routes on the supplied group. Register and
// login are public; the password-change routes require a bearer token.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/change-password", h.ChangePassword)
	g.POST("/force-password-change", h.ForcePasswordChange)
}

// userPayload is the compact account shape embedded in auth responses.
type userPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func payloadFor(u *user.User) userPayload {
	return userPayload{ID: u.ID, Name: u.Name, Role: u.Role}
}

func (h *Handler) Register(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name, email and password are required"})
	}
	if body.Role != "" && !user.ValidRole(body.Role) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid role"})
	}

	token, u, err := h.service.Register(body.Name, body.Email, body.Password, body.Role)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email already used"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"token":   token,
		"user":    payloadFor(u),
		"message": "Registration successful",
	})
}

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.Login(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if result.RequiresPasswordChange {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"token":                  result.Token,
			"user":                   payloadFor(result.User),
			"requiresPasswordChange": true,
			"message":                "Password change required",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": result.Token,
		"user":  payloadFor(result.User),
	})
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "New password is required"})
	}

	err := h.service.ChangePassword(platformauth.UserIDFromContext(c.Request().Context()),
		body.CurrentPassword, body.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Current password is incorrect"})
		case errors.Is(err, user.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *Handler) ForcePasswordChange(c echo.Context) error {
	var body struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "New password is required"})
	}

	token, u, err := h.service.ForcePasswordChange(
		platformauth.UserIDFromContext(c.Request().Context()), body.NewPassword)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":   token,
		"user":    payloadFor(u),
		"message": "Password changed successfully",
	})
}
