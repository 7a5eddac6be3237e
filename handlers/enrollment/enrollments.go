package enrollment

import (
	"github.com/collegebuddy/api/services/catalog"
	"github.com/collegebuddy/api/services/payment"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// EnrollmentHandler serves course checkout and payment confirmation
type EnrollmentHandler struct {
	gate    *payment.Gate
	catalog *catalog.Service
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(gate *payment.Gate, catalog *catalog.Service) *EnrollmentHandler {
	return &EnrollmentHandler{gate: gate, catalog: catalog}
}

// CreateRequest starts a checkout for a course
type CreateRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
}

// Create handles POST /enrollments: opens a gateway order for the course
func (h *EnrollmentHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req CreateRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	checkout, err := h.gate.CreateOrder(c.UserContext(), userID, req.CourseID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, checkout)
}

// List handles GET /enrollments
func (h *EnrollmentHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	items, err := h.catalog.Enrollments(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, items)
}

// Verify handles POST /payments/verify with the gateway callback fields.
// Replays of an already processed payment answer 200 with already_processed.
func (h *EnrollmentHandler) Verify(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var cb payment.Callback
	if err := validation.Bind(c, &cb); err != nil {
		return response.Invalid(c, err)
	}

	result, err := h.gate.Complete(c.UserContext(), userID, cb)
	if err != nil {
		return response.FromError(c, err)
	}
	if result.AlreadyProcessed {
		return response.SuccessWithMessage(c, "Payment already processed", result)
	}
	return response.SuccessWithMessage(c, "Payment verified, enrollment active", result)
}
