package gig

import (
	"github.com/collegebuddy/api/services/gig"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// GigHandler serves gigs and their rewards
type GigHandler struct {
	gigs *gig.Service
}

// NewGigHandler creates a new gig handler
func NewGigHandler(gigs *gig.Service) *GigHandler {
	return &GigHandler{gigs: gigs}
}

// GigRequest is the body of gig create and update
type GigRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	URL         *string          `json:"url" validate:"omitempty,url"`
	Reward      *decimal.Decimal `json:"reward"`
}

// AwardRequest names the user who completed a gig
type AwardRequest struct {
	UserID uint `json:"user_id" validate:"required,gt=0"`
}

func (r GigRequest) input() gig.Input {
	return gig.Input{Title: r.Title, Description: r.Description, URL: r.URL, Reward: r.Reward}
}

// List handles GET /gigs
func (h *GigHandler) List(c *fiber.Ctx) error {
	gigs, err := h.gigs.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, gigs)
}

// Create handles POST /admin/gigs
func (h *GigHandler) Create(c *fiber.Ctx) error {
	var req GigRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}
	adminID, _ := middleware.GetUserID(c)

	created, err := h.gigs.Create(c.UserContext(), req.input(), adminID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, created)
}

// Update handles PUT /admin/gigs/:id
func (h *GigHandler) Update(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid gig ID")
	}

	var req GigRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	updated, err := h.gigs.Update(c.UserContext(), id, req.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, updated)
}

// Delete handles DELETE /admin/gigs/:id
func (h *GigHandler) Delete(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid gig ID")
	}
	if err := h.gigs.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Gig deleted successfully", nil)
}

// Award handles POST /admin/gigs/:id/award
func (h *GigHandler) Award(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid gig ID")
	}

	var req AwardRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	earning, err := h.gigs.Award(c.UserContext(), id, req.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, earning)
}
