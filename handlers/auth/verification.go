package auth

import (
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// SendOTPRequest asks for a verification code. The code always goes to the
// signed-in user; an email, when given, must be theirs.
type SendOTPRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// VerifyOTPRequest redeems a verification code
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Code  string `json:"code" validate:"required,len=4,numeric"`
}

// VerifyEmail handles GET /auth/verify?token=
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return response.BadRequest(c, "Verification token is required")
	}
	if err := h.accounts.VerifyEmail(c.UserContext(), token); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Email verified successfully", nil)
}

// SendOTP handles POST /auth/send-otp
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req SendOTPRequest
	if len(c.Body()) > 0 {
		if err := validation.Bind(c, &req); err != nil {
			return response.Invalid(c, err)
		}
	}
	email, ok := sessionEmail(c, req.Email)
	if !ok {
		return response.Forbidden(c, "OTP can only be requested for your own email")
	}
	if err := h.accounts.SendOTP(c.UserContext(), email); err != nil {
		return response.FromError(c, err)
	}
	return response.Accepted(c, "OTP sent")
}

// VerifyOTP handles POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}
	email, ok := sessionEmail(c, req.Email)
	if !ok {
		return response.Forbidden(c, "OTP can only be verified for your own email")
	}
	if err := h.accounts.VerifyOTP(c.UserContext(), email, req.Code); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Email verified successfully", nil)
}

// sessionEmail returns the signed-in user's email, rejecting any other address
func sessionEmail(c *fiber.Ctx, requested string) (string, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		return "", false
	}
	if requested != "" && validation.NormalizeEmail(requested) != validation.NormalizeEmail(user.Email) {
		return "", false
	}
	return user.Email, true
}
