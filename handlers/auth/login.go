package auth

import (
	"errors"

	"github.com/collegebuddy/api/services/account"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	session, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) && h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, req.Email)
		}
		return response.FromError(c, err)
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c)
	}
	return response.Success(c, session)
}
