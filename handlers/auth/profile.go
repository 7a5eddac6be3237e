package auth

import (
	"github.com/collegebuddy/api/services/account"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest holds the editable profile fields
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,phone"`
}

// GetProfile handles GET /profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	profile, err := h.accounts.Profile(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, profile)
}

// UpdateProfile handles PUT /profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req UpdateProfileRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}
	if req.Name != nil {
		name := validation.SanitizeString(*req.Name)
		req.Name = &name
	}

	user, err := h.accounts.UpdateProfile(c.UserContext(), userID, account.ProfileUpdate{Name: req.Name, Phone: req.Phone})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Profile updated", user)
}
