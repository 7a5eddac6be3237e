package course

import (
	"github.com/collegebuddy/api/services/catalog"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	catalog *catalog.Service
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(catalog *catalog.Service) *CourseHandler {
	return &CourseHandler{catalog: catalog}
}

// CourseRequest is the body of course create and update. Omitted fields keep
// their value on update.
type CourseRequest struct {
	Title              *string          `json:"title" validate:"omitempty,min=3,max=255"`
	Code               *string          `json:"code" validate:"omitempty,min=2,max=50"`
	Description        *string          `json:"description" validate:"omitempty,max=2000"`
	Price              *decimal.Decimal `json:"price"`
	Discount           *decimal.Decimal `json:"discount"`
	ReferralCommission *decimal.Decimal `json:"referral_commission"`
}

func (r CourseRequest) input() catalog.CourseInput {
	return catalog.CourseInput{
		Title:              r.Title,
		Code:               r.Code,
		Description:        r.Description,
		Price:              r.Price,
		Discount:           r.Discount,
		ReferralCommission: r.ReferralCommission,
	}
}

// ListCourses handles GET /courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.catalog.ListCourses(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, courses)
}

// GetCourse handles GET /courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.catalog.Course(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{
		"course":         course,
		"payable_amount": course.PayableAmount(),
	})
}

// CreateCourse handles POST /super-admin/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	course, err := h.catalog.CreateCourse(c.UserContext(), req.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, course)
}

// UpdateCourse handles PUT /super-admin/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req CourseRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	course, err := h.catalog.UpdateCourse(c.UserContext(), id, req.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, course)
}

// DeleteCourse handles DELETE /super-admin/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	if err := h.catalog.DeleteCourse(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
