package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nuvix-market/nuvix-suite/internal/api/dto"
	"github.com/nuvix-market/nuvix-suite/internal/service"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// AuthHandler issues read API tokens.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Token handles POST /api/auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, exp, err := h.auth.IssueToken(req.Subject, req.Key)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}
