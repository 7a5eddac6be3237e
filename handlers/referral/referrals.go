package referral

import (
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/referral"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// ReferralHandler serves the referral program endpoints
type ReferralHandler struct {
	referrals *referral.Service
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(referrals *referral.Service) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// ApplyRequest carries the code to attach after registration
type ApplyRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

// ReviewRequest is a superadmin decision on an open referral
type ReviewRequest struct {
	Status  string `json:"status" validate:"required,oneof=GUEST PENDING SUCCESS REJECTED"`
	Message string `json:"message" validate:"max=500"`
}

// List handles GET /referrals
func (h *ReferralHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	items, err := h.referrals.List(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, items)
}

// Stats handles GET /referrals/stats
func (h *ReferralHandler) Stats(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	stats, err := h.referrals.Stats(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, stats)
}

// Apply handles POST /referrals/apply
func (h *ReferralHandler) Apply(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req ApplyRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	ref, err := h.referrals.Apply(c.UserContext(), userID, req.Code)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, ref)
}

// ListAll handles GET /super-admin/referrals
func (h *ReferralHandler) ListAll(c *fiber.Ctx) error {
	page := query.Pagination(c)
	refs, total, err := h.referrals.ListAll(c.UserContext(), referral.ListFilter{
		Status: model.ReferralStatus(strings.ToUpper(c.Query("status"))),
		Page:   page.Page,
		Limit:  page.Limit,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, refs, page, total)
}

// Review handles PATCH /super-admin/referrals/:id
func (h *ReferralHandler) Review(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid referral ID")
	}

	var req ReviewRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	ref, err := h.referrals.Review(c.UserContext(), id, model.ReferralStatus(req.Status), validation.SanitizeString(req.Message))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, ref)
}
