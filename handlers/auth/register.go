package auth

import (
	"github.com/collegebuddy/api/services/account"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	accounts             *account.Service
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts *account.Service, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		accounts:             accounts,
		bruteForceProtection: bruteForceProtection,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,password"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	ReferralCode string `json:"referral_code" validate:"omitempty,max=50"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	session, err := h.accounts.Register(c.UserContext(), account.RegisterInput{
		Name:         validation.SanitizeString(req.Name),
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, session)
}
