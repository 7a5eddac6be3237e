package auth

import (
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// ChangePasswordRequest represents a password change by a signed-in user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

// ForgotPasswordRequest starts the reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the reset flow
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

// ChangePassword handles POST /auth/change-password. Every other session is
// signed out; the response carries fresh tokens.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req ChangePasswordRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	session, err := h.accounts.ChangePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Password changed successfully", session)
}

// ForgotPassword handles POST /auth/forgot-password. The answer is the same
// whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	if err := h.accounts.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return response.FromError(c, err)
	}
	return response.Accepted(c, "If the email is registered, a reset link has been sent")
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	if err := h.accounts.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Password has been reset, please sign in again", nil)
}
