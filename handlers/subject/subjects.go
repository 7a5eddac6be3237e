package subject

import (
	"github.com/collegebuddy/api/services/catalog"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// SubjectHandler handles subject-related requests
type SubjectHandler struct {
	catalog *catalog.Service
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(catalog *catalog.Service) *SubjectHandler {
	return &SubjectHandler{catalog: catalog}
}

// SubjectRequest is the body of subject create and update
type SubjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Code        *string `json:"code" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (r SubjectRequest) input() catalog.SubjectInput {
	return catalog.SubjectInput{Name: r.Name, Code: r.Code, Description: r.Description}
}

// GetSubject handles GET /subjects/:id with notes, lectures, sessions and assignments
func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid subject ID")
	}
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	subject, err := h.catalog.SubjectDetail(c.UserContext(), catalog.Viewer{UserID: userID, Role: role}, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, subject)
}

// CreateSubject handles POST /super-admin/courses/:id/subjects
func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	courseID, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req SubjectRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	subject, err := h.catalog.CreateSubject(c.UserContext(), courseID, req.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, subject)
}

// UpdateSubject handles PUT /super-admin/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid subject ID")
	}

	var req SubjectRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	subject, err := h.catalog.UpdateSubject(c.UserContext(), id, req.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, subject)
}

// DeleteSubject handles DELETE /super-admin/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid subject ID")
	}

	if err := h.catalog.DeleteSubject(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Subject deleted successfully", nil)
}
