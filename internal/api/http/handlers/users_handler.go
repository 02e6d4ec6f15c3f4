package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/circleats/donation-service/internal/api/dto"
	"github.com/circleats/donation-service/internal/auth"
	"github.com/circleats/donation-service/internal/service"
	apperrors "github.com/circleats/donation-service/pkg/util/errorutil"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Signup handles POST /api/signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewInvalidInput("name, email, password required")
	}

	user, token, exp, err := h.auth.Signup(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Signup successful!",
		"user_id": user.ID,
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Login handles POST /api/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewInvalidInput("email and password required")
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Me handles GET /api/me for bearer-authenticated callers.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.ProfileResponse{
		UserID: principal.User.ID,
		Name:   principal.User.Name,
		Email:  principal.User.Email,
	})
}
