package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/payroll-registry/internal/api/dto"
	"github.com/spec-kit/payroll-registry/internal/service"
	apperrors "github.com/spec-kit/payroll-registry/pkg/util/errorutil"
)

// AuthHandler exposes the challenge/token endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Challenge handles POST /auth/challenge.
func (h *AuthHandler) Challenge(c *fiber.Ctx) error {
	var req dto.ChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PublicKey == "" {
		return apperrors.NewValidationError("public_key required", nil)
	}

	challenge, err := h.authService.IssueChallenge(c.UserContext(), req.PublicKey)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ChallengeResponse{
		Address:   challenge.Address.String(),
		Nonce:     challenge.Nonce,
		ExpiresAt: challenge.ExpiresAt,
	}})
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PublicKey == "" || req.Nonce == "" || req.Signature == "" {
		return apperrors.NewValidationError("public_key, nonce and signature required", nil)
	}

	token, err := h.authService.ExchangeChallenge(c.UserContext(), req.PublicKey, req.Nonce, req.Signature)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Address:   token.Subject.String(),
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	}})
}
